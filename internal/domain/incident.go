package domain

// RawIncident is the provider record as received from the SODA API. Every
// field is optional; pointers distinguish "absent" from "empty".
type RawIncident struct {
	IncidentDatetime           *string `json:"incident_datetime"`
	IncidentDate               *string `json:"incident_date"`
	IncidentTime               *string `json:"incident_time"`
	Year                       *string `json:"incident_year"`
	DayOfWeek                  *string `json:"incident_day_of_week"`
	ReportDatetime             *string `json:"report_datetime"`
	RowID                      *string `json:"row_id"`
	IncidentID                 *string `json:"incident_id"`
	IncidentNumber             *string `json:"incident_number"`
	CADNumber                  *string `json:"cad_number"`
	ReportTypeCode             *string `json:"report_type_code"`
	ReportTypeDescription      *string `json:"report_type_description"`
	FiledOnline                *bool   `json:"filed_online"`
	IncidentCode               *string `json:"incident_code"`
	IncidentCategory           *string `json:"incident_category"`
	IncidentSubcategory        *string `json:"incident_subcategory"`
	IncidentDescription        *string `json:"incident_description"`
	Resolution                 *string `json:"resolution"`
	Intersection               *string `json:"intersection"`
	CNN                        *string `json:"cnn"`
	PoliceDistrict             *string `json:"police_district"`
	AnalysisNeighborhood       *string `json:"analysis_neighborhood"`
	SupervisorDistrict         *string `json:"supervisor_district"`
	SupervisorDistrict2012     *string `json:"supervisor_district_2012"`
	Latitude                   *string `json:"latitude"`
	Longitude                  *string `json:"longitude"`
	Neighborhoods              *string `json:"neighborhoods"`
	CurrentSupervisorDistricts *string `json:"current_supervisor_districts"`
	CurrentPoliceDistricts     *string `json:"current_police_districts"`
}

// Incident is a normalized incident report with a guaranteed finite location.
type Incident struct {
	IncidentDatetime      string `json:"incident_datetime"`
	IncidentDate          string `json:"incident_date"`
	IncidentTime          string `json:"incident_time"`
	IncidentYear          string `json:"incident_year"`
	IncidentDayOfWeek     string `json:"incident_day_of_week"`
	ReportDatetime        string `json:"report_datetime"`
	RowID                 string `json:"row_id"`
	IncidentID            string `json:"incident_id"`
	IncidentNumber        string `json:"incident_number"`
	CADNumber             string `json:"cad_number"`
	ReportTypeCode        string `json:"report_type_code"`
	ReportTypeDescription string `json:"report_type_description"`
	FiledOnline           bool   `json:"filed_online"`
	IncidentCode          string `json:"incident_code"`
	Category              string `json:"incident_category"`
	Subcategory           string `json:"incident_subcategory"`
	Description           string `json:"incident_description"`
	Resolution            string `json:"resolution"`

	Intersection               string  `json:"intersection"`
	CNN                        string  `json:"cnn"`
	PoliceDistrict             string  `json:"police_district"`
	AnalysisNeighborhood       string  `json:"analysis_neighborhood"`
	SupervisorDistrict         string  `json:"supervisor_district"`
	SupervisorDistrict2012     string  `json:"supervisor_district_2012"`
	Latitude                   float64 `json:"latitude"`
	Longitude                  float64 `json:"longitude"`
	Neighborhoods              string  `json:"neighborhoods"`
	CurrentSupervisorDistricts string  `json:"current_supervisor_districts"`
	CurrentPoliceDistricts     string  `json:"current_police_districts"`
}

// Properties flattens the incident into GeoJSON feature properties.
func (i Incident) Properties() map[string]any {
	return map[string]any{
		"incident_datetime":            i.IncidentDatetime,
		"incident_date":                i.IncidentDate,
		"incident_time":                i.IncidentTime,
		"incident_year":                i.IncidentYear,
		"incident_day_of_week":         i.IncidentDayOfWeek,
		"report_datetime":              i.ReportDatetime,
		"row_id":                       i.RowID,
		"incident_id":                  i.IncidentID,
		"incident_number":              i.IncidentNumber,
		"cad_number":                   i.CADNumber,
		"report_type_code":             i.ReportTypeCode,
		"report_type_description":      i.ReportTypeDescription,
		"filed_online":                 i.FiledOnline,
		"incident_code":                i.IncidentCode,
		"incident_category":            i.Category,
		"incident_subcategory":         i.Subcategory,
		"incident_description":         i.Description,
		"resolution":                   i.Resolution,
		"intersection":                 i.Intersection,
		"cnn":                          i.CNN,
		"police_district":              i.PoliceDistrict,
		"analysis_neighborhood":        i.AnalysisNeighborhood,
		"supervisor_district":          i.SupervisorDistrict,
		"supervisor_district_2012":     i.SupervisorDistrict2012,
		"latitude":                     i.Latitude,
		"longitude":                    i.Longitude,
		"neighborhoods":                i.Neighborhoods,
		"current_supervisor_districts": i.CurrentSupervisorDistricts,
		"current_police_districts":     i.CurrentPoliceDistricts,
	}
}
