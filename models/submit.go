package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"go-dhis2bridge/utils/dbutils"
)

// MappingOutcome is the per-mapping result of a submission batch
type MappingOutcome struct {
	MappingID int64  `json:"mappingID"`
	Name      string `json:"name"`
	Submitted int    `json:"submitted"`
	Skipped   bool   `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SubmitReport accumulates the outcomes of one SubmitAll batch
type SubmitReport struct {
	ServerID int64            `json:"serverID"`
	Outcomes []MappingOutcome `json:"outcomes"`
}

// Failed returns the outcomes that ended in an error
func (r *SubmitReport) Failed() []MappingOutcome {
	return lo.Filter(r.Outcomes, func(outcome MappingOutcome, _ int) bool {
		return outcome.Error != ""
	})
}

// Submitter turns mapping query results into data value sets and posts
// them to the mapping's server
type Submitter struct {
	db     *sqlx.DB
	client *Client
}

// NewSubmitter returns a Submitter using the given store and client
func NewSubmitter(db *sqlx.DB, client *Client) *Submitter {
	return &Submitter{db: db, client: client}
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// BuildDataValueSet packages a query result as the payload for one
// mapping. The result must carry a date and a value column; dates are
// encoded as period strings of the owning data set's period type.
func BuildDataValueSet(row MappingRow, columns []string, rows [][]interface{}, dryRun bool) (*DataValueSetRequest, error) {
	if err := RequireResultColumns(columns); err != nil {
		return nil, err
	}
	if row.OrgUnitID == "" {
		return nil, &InvalidMappingError{Reason: "the data set has no organisation unit assigned"}
	}
	dateIdx := lo.IndexOf(columns, "date")
	valueIdx := lo.IndexOf(columns, "value")

	payload := &DataValueSetRequest{
		DryRun:               dryRun,
		AttributeOptionCombo: row.AttributeOptionID,
		DataValues:           []DataValue{},
	}
	for _, result := range rows {
		date, ok := result[dateIdx].(time.Time)
		if !ok {
			return nil, &InvalidMappingError{Reason: "the date column does not hold timestamps"}
		}
		period, err := PeriodString(PeriodType(row.PeriodType), date)
		if err != nil {
			return nil, err
		}
		payload.DataValues = append(payload.DataValues, DataValue{
			DataElement:         row.DataElementID,
			OrgUnit:             row.OrgUnitID,
			CategoryOptionCombo: row.CategoryOptionID,
			Period:              period,
			Value:               formatValue(result[valueIdx]),
		})
	}
	return payload, nil
}

// Submit executes one mapping's query and posts the resulting data
// value set. A mapping without a query or with the active flag unset is
// inert: Submit returns without touching the database or the network.
// Returns the number of submitted values and whether the mapping was
// skipped as inert.
func (s *Submitter) Submit(row MappingRow, dryRun bool) (int, bool, error) {
	if strings.TrimSpace(row.SQLQuery) == "" || !row.Active {
		return 0, true, nil
	}
	columns, results, err := ExecuteQuery(s.db, row.SQLQuery)
	if err != nil {
		return 0, false, err
	}
	payload, err := BuildDataValueSet(row, columns, results, dryRun)
	if err != nil {
		return 0, false, err
	}
	summary, err := s.client.PostDataValueSet(payload)
	if err != nil {
		return 0, false, err
	}
	log.WithFields(log.Fields{
		"mapping":  row.Name,
		"values":   len(payload.DataValues),
		"imported": summary.Response.ImportCount.Imported,
		"updated":  summary.Response.ImportCount.Updated,
		"ignored":  summary.Response.ImportCount.Ignored,
	}).Info("Submitted data value set")
	return len(payload.DataValues), false, nil
}

// SubmitAll submits every mapping reachable from the server. A failure
// on one mapping is recorded and does not stop the remaining mappings.
func (s *Submitter) SubmitAll(server *Server, dryRun bool) *SubmitReport {
	report := &SubmitReport{ServerID: server.ID, Outcomes: []MappingOutcome{}}
	rows, err := MappingRowsForServer(s.db, server.ID)
	if err != nil {
		log.WithError(err).WithField("server", server.Name).Error("Failed to list mappings for submission")
		return report
	}
	for _, row := range rows {
		submitted, skipped, err := s.Submit(row, dryRun)
		outcome := MappingOutcome{
			MappingID: row.MappingID,
			Name:      row.Name,
			Submitted: submitted,
			Skipped:   skipped,
		}
		if err != nil {
			outcome.Error = err.Error()
			log.WithError(err).WithField("mapping", row.Name).Error("Mapping submission failed")
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	if !dryRun {
		if err := SaveSubmissionLog(s.db, server.ID, report); err != nil {
			log.WithError(err).Error("Failed to save submission log")
		}
	}
	return report
}

// SubmissionLog is a persisted SubmitAll report
type SubmissionLog struct {
	ID       int64        `db:"id" json:"id"`
	ServerID int64        `db:"server_id" json:"serverID"`
	Report   dbutils.JSON `db:"report" json:"report"`
	Created  time.Time    `db:"created" json:"created"`
}

// SaveSubmissionLog stores the report of a submission batch
func SaveSubmissionLog(db *sqlx.DB, serverID int64, report *SubmitReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = db.NamedExec(`INSERT INTO submission_logs (server_id, report, created)
		VALUES (:server_id, :report, now())`,
		SubmissionLog{ServerID: serverID, Report: dbutils.JSON(raw)})
	return err
}

// SubmissionLogsForServer returns the persisted submission reports of a
// server, newest first
func SubmissionLogsForServer(db *sqlx.DB, serverID int64) ([]SubmissionLog, error) {
	var logs []SubmissionLog
	err := db.Select(&logs,
		`SELECT * FROM submission_logs WHERE server_id = $1 ORDER BY id DESC`, serverID)
	return logs, err
}
