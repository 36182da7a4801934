// Command gensample writes a small pair of SMN-style input files, Latin-1
// encoded, for local runs of the ETL.
//
// Usage:
//
//	go run ./cmd/gensample -out ./datasets
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	climateFile  = "ESTADISTICAS CLIMATICAS NORMALES.CSV"
	stationsFile = "ESTACIONES METEOROLOGICAS.TXT"
)

var months = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Setiembre", "Octubre", "Noviembre", "Diciembre",
}

type station struct {
	name     string
	province string
	lat, lon float64
	// inCatalogue is false for stations that only the corrections list places.
	inCatalogue bool
}

var stations = []station{
	{"Buenos Aires", "CAPITAL FEDERAL", -34.58, -58.48, false},
	{"Córdoba Aero", "CÓRDOBA", -31.32, -64.21, true},
	{"Malargüe Aero", "MENDOZA", -35.48, -69.58, false},
	{"Pigüe Aero", "BUENOS AIRES", -37.60, -62.38, false},
	{"Ushuaia Aero", "TIERRA DEL FUEGO", -54.80, -68.32, true},
	{"Salta Aero", "SALTA", -24.85, -65.48, true},
	{"Neuquén Aero", "NEUQUÉN", -38.95, -68.13, true},
}

func main() {
	out := flag.String("out", "datasets", "directory to write the sample files into")
	flag.Parse()

	if err := run(*out); err != nil {
		log.Fatal(err)
	}
}

func run(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	climatePath := filepath.Join(dir, climateFile)
	if err := writeLatin1CSV(climatePath, ';', climateRows()); err != nil {
		return fmt.Errorf("write climate normals: %w", err)
	}
	log.Printf("%s: %d stations x %d variables", climatePath, len(stations), 5)

	stationsPath := filepath.Join(dir, stationsFile)
	if err := writeLatin1CSV(stationsPath, ',', stationRows()); err != nil {
		return fmt.Errorf("write stations: %w", err)
	}
	log.Printf("%s written", stationsPath)
	return nil
}

func climateRows() [][]string {
	header := append([]string{"Estación", "Valor medio de"}, months...)
	rows := [][]string{header}
	for _, s := range stations {
		for _, v := range []string{
			domain.VarTemperature, domain.VarMaxTemperature, domain.VarMinTemperature,
			domain.VarHumidity, domain.VarWindSpeed,
		} {
			row := []string{s.name, v}
			for m := range months {
				row = append(row, sampleValue(s, v, m))
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// sampleValue produces a plausible seasonal value. Colder with latitude,
// warmest in January, and one missing reading per station.
func sampleValue(s station, variable string, month int) string {
	if month == 6 && variable == domain.VarWindSpeed {
		return "S/D"
	}
	season := math.Cos(2 * math.Pi * float64(month) / 12)
	base := 30 + s.lat*0.45
	var v float64
	switch variable {
	case domain.VarTemperature:
		v = base + 6*season
	case domain.VarMaxTemperature:
		v = base + 6 + 7*season
	case domain.VarMinTemperature:
		v = base - 7 + 5*season
	case domain.VarHumidity:
		v = 65 - 10*season + s.lon*0.1
	case domain.VarWindSpeed:
		v = 12 + math.Abs(s.lat)*0.2 + 2*season
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

func stationRows() [][]string {
	rows := [][]string{{"NOMBRE", "PROVINCIA", "LATITUD", "LONGITUD", "ALTURA"}}
	for _, s := range stations {
		if !s.inCatalogue {
			continue
		}
		rows = append(rows, []string{
			s.name, s.province,
			strconv.FormatFloat(s.lat, 'f', 2, 64),
			strconv.FormatFloat(s.lon, 'f', 2, 64),
			"100",
		})
	}
	return rows
}

func writeLatin1CSV(path string, comma rune, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	enc := transform.NewWriter(f, charmap.ISO8859_1.NewEncoder())
	if err := writeCSV(enc, comma, rows); err != nil {
		return err
	}
	return enc.Close()
}

func writeCSV(w io.Writer, comma rune, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
