package dbutils

import (
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"
)

// Int is a nullable int64 that reads/writes SQL NULL as 0
type Int int64

// Value implements the driver.Valuer interface
func (i Int) Value() (driver.Value, error) {
	if i == 0 {
		return nil, nil
	}
	return int64(i), nil
}

// Scan implements the sql.Scanner interface
func (i *Int) Scan(value interface{}) error {
	if value == nil {
		*i = 0
		return nil
	}
	v, ok := value.(int64)
	if !ok {
		return errors.New("type assertion to int64 failed")
	}
	*i = Int(v)
	return nil
}

// JSON is a raw JSON column value
type JSON []byte

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	*j = append((*j)[0:0], b...)
	return nil
}

// IsUniqueViolation returns true if err is a postgres unique constraint
// violation
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
