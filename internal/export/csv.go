// Package export writes spreadsheet reports and JSON backups of the CRM.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/evcraddock/medicall/internal/doctor"
	"github.com/evcraddock/medicall/internal/period"
	"github.com/evcraddock/medicall/internal/procedure"
	"github.com/evcraddock/medicall/internal/timeoff"
)

// bom makes spreadsheet applications open the file as UTF-8.
const bom = "\ufeff"

// UnknownExecutive labels procedures whose doctor is not in the roster.
const UnknownExecutive = "DESCONOCIDO"

var (
	visitHeaders     = []string{"FECHA", "HORA", "EJECUTIVO", "MÉDICO/HOSPITAL", "ESPECIALIDAD", "OBJETIVO", "RESULTADO", "NOTA", "SEGUIMIENTO", "ESTADO"}
	procedureHeaders = []string{"FECHA", "HORA", "HOSPITAL", "MÉDICO", "EJECUTIVO", "PROCEDIMIENTO", "TÉCNICO", "PAGO", "COSTO", "COMISIÓN", "ESTADO", "NOTAS"}
	timeOffHeaders   = []string{"EJECUTIVO", "INICIO", "FIN", "DURACIÓN", "MOTIVO", "NOTAS"}
)

// VisitsFilename is the download name of a visits report.
func VisitsFilename(sel period.Selection) string {
	return fmt.Sprintf("REPORTE_VISITAS_%d_%s.csv", sel.Year, sel.MonthParam())
}

// ProceduresFilename is the download name of a procedures report.
func ProceduresFilename(sel period.Selection) string {
	return fmt.Sprintf("REPORTE_PROCEDIMIENTOS_%d_%s.csv", sel.Year, sel.MonthParam())
}

// TimeOffFilename is the download name of an absences report.
const TimeOffFilename = "REPORTE_AUSENCIAS.csv"

// WriteVisits writes every visit in sel, optionally limited to one
// executive's doctors.
func WriteVisits(w io.Writer, roster []doctor.Doctor, sel period.Selection, executive string) error {
	cw, err := newWriter(w, visitHeaders)
	if err != nil {
		return err
	}

	for _, d := range roster {
		if executive != "" && d.Executive != executive {
			continue
		}
		specialty := d.Specialty
		if specialty == "" {
			specialty = d.Category
		}
		for _, v := range d.Visits {
			if !sel.Contains(v.Date) {
				continue
			}
			state := "PLANEADA"
			if v.Status == doctor.StatusCompleted {
				state = "REALIZADA"
			}
			record := []string{
				v.Date, v.Time, d.Executive, d.Name, specialty,
				v.Objective, string(v.Outcome), v.Note, v.FollowUp, state,
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("writing visit %s: %w", v.ID, err)
			}
		}
	}

	return flush(cw)
}

// WriteProcedures writes every procedure in sel. The executive of a
// procedure is that of its doctor.
func WriteProcedures(w io.Writer, procedures []procedure.Procedure, roster []doctor.Doctor, sel period.Selection, executive string) error {
	cw, err := newWriter(w, procedureHeaders)
	if err != nil {
		return err
	}

	owner := make(map[string]string, len(roster))
	for _, d := range roster {
		owner[d.ID] = d.Executive
	}

	for _, p := range procedures {
		exec, ok := owner[p.DoctorID]
		if !ok {
			exec = UnknownExecutive
		}
		if executive != "" && exec != executive {
			continue
		}
		if !sel.Contains(p.Date) {
			continue
		}
		state := "PROGRAMADO"
		if p.Performed() {
			state = "REALIZADO"
		}
		record := []string{
			p.Date, p.Time, p.Hospital, p.DoctorName, exec, p.ProcedureType,
			p.Technician, p.PaymentType, money(p.Cost), money(p.Commission), state, p.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing procedure %s: %w", p.ID, err)
		}
	}

	return flush(cw)
}

// WriteTimeOff writes every absence, optionally limited to one executive.
// Absences are not filtered by period.
func WriteTimeOff(w io.Writer, events []timeoff.Event, executive string) error {
	cw, err := newWriter(w, timeOffHeaders)
	if err != nil {
		return err
	}

	for _, e := range events {
		if executive != "" && e.Executive != executive {
			continue
		}
		record := []string{e.Executive, e.StartDate, e.EndDate, e.Duration, e.Reason, e.Notes}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing time off %s: %w", e.ID, err)
		}
	}

	return flush(cw)
}

func newWriter(w io.Writer, headers []string) (*csv.Writer, error) {
	if _, err := io.WriteString(w, bom); err != nil {
		return nil, fmt.Errorf("writing csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	return cw, nil
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
