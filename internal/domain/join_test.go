package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	records := []ClimateRecord{
		{Station: "JOSE", Variable: VarTemperature, Month: "ENERO", Value: Float(15)},
		{Station: "BUENOS AIRES", Variable: VarTemperature, Month: "ENERO", Value: Float(24.6)},
		{Station: "BUENOS AIRES", Variable: VarTemperature, Month: "FEBRERO", Value: Float(23.6)},
	}
	locations := []StationLocation{
		{Name: "José", Lat: Float(-10), Lon: Float(-60)},
	}

	res := Join(records, locations)

	require.Len(t, res.Records, len(records))
	assert.Equal(t, records[0], res.Records[0].ClimateRecord)
	assert.Equal(t, Float(-10), res.Records[0].Lat)
	assert.Equal(t, Float(-60), res.Records[0].Lon)
	assert.True(t, res.Records[0].HasCoordinates())

	assert.Nil(t, res.Records[1].Lat)
	assert.Nil(t, res.Records[1].Lon)
	assert.False(t, res.Records[2].HasCoordinates())
	assert.Equal(t, []string{"BUENOS AIRES"}, res.Unmatched)
	assert.Zero(t, res.Duplicates)
}

func TestJoin_DuplicateStationFirstWins(t *testing.T) {
	records := []ClimateRecord{{Station: "PILAR OBS.", Month: "ENERO"}}
	locations := []StationLocation{
		{Name: "PILAR OBS.", Lat: Float(-34.4), Lon: Float(-58.9)},
		{Name: "pilar obs.", Lat: Float(-31.6), Lon: Float(-63.8)},
	}

	res := Join(records, locations)

	require.Len(t, res.Records, 1)
	assert.Equal(t, Float(-34.4), res.Records[0].Lat)
	assert.Equal(t, 1, res.Duplicates)
}

func TestJoin_Empty(t *testing.T) {
	res := Join(nil, nil)

	assert.Empty(t, res.Records)
	assert.Empty(t, res.Unmatched)
}
