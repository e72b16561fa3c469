package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/timeoff"
)

// BackupVersion is written into every backup.
const BackupVersion = "5.0"

// ErrInvalidBackup is returned for a backup without a doctors list.
var ErrInvalidBackup = errors.New("invalid backup")

// Backup is a full snapshot of the CRM.
type Backup struct {
	Doctors    []doctor.Doctor       `json:"doctors"`
	Procedures []procedure.Procedure `json:"procedures"`
	TimeOff    []timeoff.Event       `json:"timeOff"`
	ExportedAt time.Time             `json:"exportedAt"`
	Version    string                `json:"version"`
}

// NewBackup builds a backup stamped with now. Nil lists are written as
// empty arrays.
func NewBackup(doctors []doctor.Doctor, procedures []procedure.Procedure, timeOff []timeoff.Event, now time.Time) Backup {
	if doctors == nil {
		doctors = []doctor.Doctor{}
	}
	if procedures == nil {
		procedures = []procedure.Procedure{}
	}
	if timeOff == nil {
		timeOff = []timeoff.Event{}
	}
	return Backup{
		Doctors:    doctors,
		Procedures: procedures,
		TimeOff:    timeOff,
		ExportedAt: now.UTC(),
		Version:    BackupVersion,
	}
}

// BackupFilename is the download name of a backup taken at now.
func BackupFilename(now time.Time) string {
	return fmt.Sprintf("RESPALDO_CRM_RC_%s.json", now.UTC().Format("2006-01-02"))
}

// WriteBackup writes b as indented JSON.
func WriteBackup(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// ReadBackup decodes a backup. The doctors field must be present and be
// an array; the other lists are optional.
func ReadBackup(r io.Reader) (Backup, error) {
	var raw struct {
		Doctors json.RawMessage `json:"doctors"`
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Backup{}, fmt.Errorf("reading backup: %w", err)
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if len(raw.Doctors) == 0 || raw.Doctors[0] != '[' {
		return Backup{}, fmt.Errorf("%w: doctors must be an array", ErrInvalidBackup)
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return b, nil
}
