package models

// RemoteRef is a summary entry in a DHIS2 listing. List endpoints only
// guarantee the UID, every other attribute comes from the detail fetch.
type RemoteRef struct {
	ID string `json:"id"`
}

// MeResponse is the reply of the /me authorization probe
type MeResponse struct {
	Name              string      `json:"name"`
	OrganisationUnits []RemoteRef `json:"organisationUnits"`
}

// OrgUnitDetail is the detail of an organisation unit
type OrgUnitDetail struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// CategoryComboListResponse is the reply of the /categoryCombos listing
type CategoryComboListResponse struct {
	CategoryCombos []RemoteRef `json:"categoryCombos"`
}

// CategoryComboDetail is the detail of a category combo, including the
// summary list of its option combos
type CategoryComboDetail struct {
	ID                   string      `json:"id"`
	DisplayName          string      `json:"displayName"`
	DataDimensionType    string      `json:"dataDimensionType"`
	CategoryOptionCombos []RemoteRef `json:"categoryOptionCombos"`
}

// CategoryOptionComboDetail is the detail of a category option combo
type CategoryOptionComboDetail struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// DataSetListResponse is the reply of the /dataSets listing
type DataSetListResponse struct {
	DataSets []RemoteRef `json:"dataSets"`
}

// DataSetElementRef wraps the data element reference inside a data set's
// dataSetElements association
type DataSetElementRef struct {
	DataElement RemoteRef `json:"dataElement"`
}

// DataSetDetail is the detail of a data set
type DataSetDetail struct {
	ID              string              `json:"id"`
	DisplayName     string              `json:"displayName"`
	PeriodType      string              `json:"periodType"`
	CategoryCombo   RemoteRef           `json:"categoryCombo"`
	DataSetElements []DataSetElementRef `json:"dataSetElements"`
}

// DataElementDetail is the detail of a data element
type DataElementDetail struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"displayName"`
	AggregationType string    `json:"aggregationType"`
	ValueType       string    `json:"valueType"`
	DomainType      string    `json:"domainType"`
	CategoryCombo   RemoteRef `json:"categoryCombo"`
}

// DataValue is a single data value in a data value set payload
type DataValue struct {
	DataElement         string `json:"dataElement"`
	OrgUnit             string `json:"orgUnit"`
	CategoryOptionCombo string `json:"categoryOptionCombo"`
	Period              string `json:"period"`
	Value               string `json:"value"`
}

// DataValueSetRequest is the payload POSTed to /dataValueSets
type DataValueSetRequest struct {
	DryRun               bool        `json:"dryRun"`
	AttributeOptionCombo string      `json:"attributeOptionCombo"`
	DataValues           []DataValue `json:"dataValues"`
}

// ConflictObject is a per-value conflict in a DHIS2 import response
type ConflictObject struct {
	Object    string `json:"object"`
	Value     string `json:"value"`
	ErrorCode string `json:"errorCode"`
	Property  string `json:"property"`
}

// ImportCount is the import count in an import response
type ImportCount struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Ignored  int `json:"ignored"`
	Deleted  int `json:"deleted"`
	Total    int `json:"total"`
}

// ImportResponse is the inner response object of a data value set import
type ImportResponse struct {
	ResponseType string           `json:"responseType"`
	Status       string           `json:"status"`
	Description  string           `json:"description,omitempty"`
	ImportCount  ImportCount      `json:"importCount"`
	Conflicts    []ConflictObject `json:"conflicts,omitempty"`
}

// ImportSummary is the outer reply of a POST to /dataValueSets
type ImportSummary struct {
	HTTPStatus     string         `json:"httpStatus"`
	HTTPStatusCode int            `json:"httpStatusCode"`
	Status         string         `json:"status"`
	Message        string         `json:"message"`
	Response       ImportResponse `json:"response"`
}
