// Package domain models San Francisco Police Department incident reports
// published through the DataSF open-data portal.
//
// # Data Source
//
// Incidents come from the "Police Department Incident Reports: 2018 to
// Present" dataset (wg3w-h783), served by the Socrata SODA API at
// https://data.sfgov.org/resource/wg3w-h783.json. The service queries it with
// a SoQL filter on incident_date and a $limit cap; the API answers with a
// JSON array of flat objects whose values are almost all strings.
//
// # SODA Data Conventions
//
// Coordinates:
//
//	"latitude" and "longitude" are decimal-degree strings, e.g. "37.7749".
//	Roughly 5% of reports carry no location (filed online, location
//	withheld). Those rows omit both keys and are dropped by [NormalizeRecords].
//
// Dates:
//
//	Floating timestamps without a zone designator, e.g.
//	"2023-05-31T00:00:00.000". SoQL comparisons against them must use the
//	same shape, so query bounds are rendered by [FormatFloatingTimestamp].
//
// Categories:
//
//	"incident_category" is free text maintained by SFPD, with historical
//	spelling variants ("Weapons Offence", "Motor Vehicle Theft?"). Rows
//	without a category are labelled "Unknown". Color lookup lower-cases the
//	label; grouping does not.
//
// Oversized requests:
//
//	When a $limit is too large the provider may answer 200 with a JSON
//	object describing the failure instead of an array. That body surfaces as
//	[ErrResponseNotList].
package domain
