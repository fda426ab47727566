package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UnknownCategory labels incidents whose category or subcategory is absent.
const UnknownCategory = "Unknown"

// DecodeRecords parses a SODA response body into raw incidents. It returns
// ErrResponseNotList when the body is not a JSON array. Array elements that
// are not JSON objects are skipped; the number skipped is returned.
func DecodeRecords(body []byte) ([]RawIncident, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, 0, ErrResponseNotList
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrResponseNotList, err)
	}

	raws := make([]RawIncident, 0, len(elems))
	skipped := 0
	for _, elem := range elems {
		var rec RawIncident
		if err := json.Unmarshal(elem, &rec); err != nil {
			skipped++
			continue
		}
		raws = append(raws, rec)
	}
	return raws, skipped, nil
}

// UnmarshalJSON decodes one provider record field by field. Numbers and
// booleans in string fields keep their literal text; values of any other
// shape are treated as absent so one odd field never costs the record.
func (r *RawIncident) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("record is null")
	}

	*r = RawIncident{}
	for key, dst := range r.stringFields() {
		if v, ok := fields[key]; ok {
			*dst = lenientString(v)
		}
	}
	if v, ok := fields["filed_online"]; ok {
		r.FiledOnline = lenientBool(v)
	}
	return nil
}

func (r *RawIncident) stringFields() map[string]**string {
	return map[string]**string{
		"incident_datetime":            &r.IncidentDatetime,
		"incident_date":                &r.IncidentDate,
		"incident_time":                &r.IncidentTime,
		"incident_year":                &r.Year,
		"incident_day_of_week":         &r.DayOfWeek,
		"report_datetime":              &r.ReportDatetime,
		"row_id":                       &r.RowID,
		"incident_id":                  &r.IncidentID,
		"incident_number":              &r.IncidentNumber,
		"cad_number":                   &r.CADNumber,
		"report_type_code":             &r.ReportTypeCode,
		"report_type_description":      &r.ReportTypeDescription,
		"incident_code":                &r.IncidentCode,
		"incident_category":            &r.IncidentCategory,
		"incident_subcategory":         &r.IncidentSubcategory,
		"incident_description":         &r.IncidentDescription,
		"resolution":                   &r.Resolution,
		"intersection":                 &r.Intersection,
		"cnn":                          &r.CNN,
		"police_district":              &r.PoliceDistrict,
		"analysis_neighborhood":        &r.AnalysisNeighborhood,
		"supervisor_district":          &r.SupervisorDistrict,
		"supervisor_district_2012":     &r.SupervisorDistrict2012,
		"latitude":                     &r.Latitude,
		"longitude":                    &r.Longitude,
		"neighborhoods":                &r.Neighborhoods,
		"current_supervisor_districts": &r.CurrentSupervisorDistricts,
		"current_police_districts":     &r.CurrentPoliceDistricts,
	}
}

func lenientString(v json.RawMessage) *string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return nil
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil
		}
		return &s
	case 't', 'f', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		s := string(v)
		return &s
	default:
		// null, objects and arrays
		return nil
	}
}

func lenientBool(v json.RawMessage) *bool {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return &b
	}
	s := lenientString(v)
	if s == nil {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &b
}

// NormalizeRecords converts raw records into incidents, dropping any record
// without a parseable, finite latitude and longitude. Output order follows
// input order.
func NormalizeRecords(raws []RawIncident) []Incident {
	out := make([]Incident, 0, len(raws))
	for i := range raws {
		inc, ok := normalizeRecord(&raws[i])
		if !ok {
			continue
		}
		out = append(out, inc)
	}
	return out
}

func normalizeRecord(r *RawIncident) (Incident, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return Incident{}, false
	}
	lat, ok := parseCoordinate(*r.Latitude)
	if !ok {
		return Incident{}, false
	}
	lon, ok := parseCoordinate(*r.Longitude)
	if !ok {
		return Incident{}, false
	}

	filedOnline := false
	if r.FiledOnline != nil {
		filedOnline = *r.FiledOnline
	}

	return Incident{
		IncidentDatetime:      str(r.IncidentDatetime),
		IncidentDate:          str(r.IncidentDate),
		IncidentTime:          str(r.IncidentTime),
		IncidentYear:          str(r.Year),
		IncidentDayOfWeek:     str(r.DayOfWeek),
		ReportDatetime:        str(r.ReportDatetime),
		RowID:                 str(r.RowID),
		IncidentID:            str(r.IncidentID),
		IncidentNumber:        str(r.IncidentNumber),
		CADNumber:             str(r.CADNumber),
		ReportTypeCode:        str(r.ReportTypeCode),
		ReportTypeDescription: str(r.ReportTypeDescription),
		FiledOnline:           filedOnline,
		IncidentCode:          str(r.IncidentCode),
		Category:              strOr(r.IncidentCategory, UnknownCategory),
		Subcategory:           strOr(r.IncidentSubcategory, UnknownCategory),
		Description:           str(r.IncidentDescription),
		Resolution:            str(r.Resolution),

		Intersection:               str(r.Intersection),
		CNN:                        str(r.CNN),
		PoliceDistrict:             str(r.PoliceDistrict),
		AnalysisNeighborhood:       str(r.AnalysisNeighborhood),
		SupervisorDistrict:         str(r.SupervisorDistrict),
		SupervisorDistrict2012:     str(r.SupervisorDistrict2012),
		Latitude:                   lat,
		Longitude:                  lon,
		Neighborhoods:              str(r.Neighborhoods),
		CurrentSupervisorDistricts: str(r.CurrentSupervisorDistricts),
		CurrentPoliceDistricts:     str(r.CurrentPoliceDistricts),
	}, true
}

// parseCoordinate parses a decimal-degree string. "N/A", "", "NaN" and
// infinities are all rejected.
func parseCoordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
