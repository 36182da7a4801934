// Package domain models the monthly climate normals published by the
// Servicio Meteorológico Nacional (SMN) of Argentina and the station
// catalogue used to place them on a map.
//
// # Data Source
//
// Two delimited text files, both Latin-1 encoded:
//
//	ESTADISTICAS CLIMATICAS NORMALES.CSV  (";" separated, wide format)
//	ESTACIONES METEOROLOGICAS.TXT         ("," separated, one row per station)
//
// The normals file carries one row per (station, variable) pair and one
// column per month:
//
//	ESTACIÓN;VALOR MEDIO DE;ENERO;FEBRERO;...;DICIEMBRE
//	BUENOS AIRES;TEMPERATURA (°C);24.6;23.6;...;23.3
//
// # Station Identity
//
// Both files spell station names differently (accents, case, padding), so the
// join key is the normalized name produced by [Normalize]: uppercased,
// trimmed, with Á, É, Í, Ó, Ú and Ñ replaced by their plain letters. Other
// marks (Ü in "MALARGÜE AERO") are kept on both sides, so they still match.
//
// # Values
//
// Monthly values are decimal strings with "." as separator. Anything that
// does not parse ("S/D", blanks, "NaN") becomes a nil value rather than an
// error. See [ParseValue].
//
// # Shapes
//
//	wide: NormalsTable   one row per (station, variable), one value per month
//	long: ClimateRecord  one row per (station, variable, month)
//	JoinedRecord         ClimateRecord plus station coordinates (nil if unknown)
package domain
