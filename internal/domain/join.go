package domain

// JoinResult is the left join output plus what the join could not place.
type JoinResult struct {
	Records []JoinedRecord

	// Unmatched lists distinct station names without a catalogue entry, in
	// first-seen order.
	Unmatched []string

	// Duplicates counts catalogue entries ignored because an earlier entry had
	// the same normalized name.
	Duplicates int
}

// Join left-joins records with locations on normalized station name. Every
// record is kept; records without a match get nil coordinates. When the
// catalogue holds a name twice, the first entry wins.
func Join(records []ClimateRecord, locations []StationLocation) JoinResult {
	index := make(map[string]StationLocation, len(locations))
	var res JoinResult
	for _, loc := range locations {
		key := Normalize(loc.Name)
		if _, dup := index[key]; dup {
			res.Duplicates++
			continue
		}
		index[key] = loc
	}

	missing := make(map[string]bool)
	res.Records = make([]JoinedRecord, 0, len(records))
	for _, rec := range records {
		joined := JoinedRecord{ClimateRecord: rec}
		if loc, ok := index[Normalize(rec.Station)]; ok {
			joined.Lat = loc.Lat
			joined.Lon = loc.Lon
		} else if !missing[rec.Station] {
			missing[rec.Station] = true
			res.Unmatched = append(res.Unmatched, rec.Station)
		}
		res.Records = append(res.Records, joined)
	}
	return res
}
