package jobs

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"Backend-GACP-Survey/src/models"
)

//go:embed email_response_submitted.html
var submittedEmailHTML string

var thaiMonths = []string{"", "มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน", "กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม"}

var bangkok = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}()

// formatDateThai แสดงวันที่แบบไทย ปี พ.ศ.
func formatDateThai(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.In(bangkok)
	return fmt.Sprintf("%d %s %d", t.Day(), thaiMonths[int(t.Month())], t.Year()+543)
}

func complianceThai(level string) string {
	switch models.ComplianceLevel(level) {
	case models.FullCompliance:
		return "สอดคล้องสมบูรณ์"
	case models.SubstantialCompliance:
		return "สอดคล้องเป็นส่วนใหญ่"
	case models.PartialCompliance:
		return "สอดคล้องบางส่วน"
	case models.LimitedCompliance:
		return "สอดคล้องน้อย"
	case models.NonCompliance:
		return "ไม่สอดคล้อง"
	default:
		return level
	}
}

var submittedEmailTmpl = template.Must(
	template.New("submitted").
		Funcs(template.FuncMap{
			"formatDateThai": formatDateThai,
			"complianceThai": complianceThai,
		}).
		Parse(submittedEmailHTML),
)

func RenderSubmittedEmailHTML(p ResponseSubmittedPayload) (string, error) {
	var buf bytes.Buffer
	if err := submittedEmailTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
