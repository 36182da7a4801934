package domain

// NormalsTable is the wide climate normals table as loaded from disk.
// Months holds the non-identifier column labels in file order and every row
// carries exactly one raw value per month.
type NormalsTable struct {
	Months []string
	Rows   []NormalsRow
}

// NormalsRow is one (station, variable) line of the wide table.
type NormalsRow struct {
	Station  string
	Variable string
	Values   []string
}

// ClimateRecord is a single (station, variable, month) observation.
type ClimateRecord struct {
	Station  string   `json:"station"`
	Variable string   `json:"variable"`
	Month    string   `json:"month"`
	Value    *float64 `json:"value"`
}

// StationLocation is one entry of the station catalogue.
type StationLocation struct {
	Name string
	Lat  *float64
	Lon  *float64
}

// JoinedRecord is a ClimateRecord placed on the map. Lat and Lon are nil when
// the station was not found in the catalogue and no correction applies.
type JoinedRecord struct {
	ClimateRecord
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// HasCoordinates reports whether both coordinates are known.
func (r JoinedRecord) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil
}

// Correction overrides the coordinates of a station after the join.
type Correction struct {
	Station string  `yaml:"station"`
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
}

// Float returns a pointer to v, for building nullable values.
func Float(v float64) *float64 {
	return &v
}
