package models

import (
	"sort"
	"time"
)

// ResponseMetrics สถิติการทำแบบประเมินของผู้ตอบหนึ่งคน
type ResponseMetrics struct {
	ResponseID             string         `json:"responseId"`
	Status                 ResponseStatus `json:"status"`
	AnsweredQuestions      int            `json:"answeredQuestions"`
	TotalQuestions         int            `json:"totalQuestions"`
	OverallProgress        float64        `json:"overallProgress"`
	ModifiedAnswers        int            `json:"modifiedAnswers"`
	AnswersWithEvidence    int            `json:"answersWithEvidence"`
	AverageConfidence      *float64       `json:"averageConfidence,omitempty"`
	SessionCount           int            `json:"sessionCount"`
	TotalTimeSpent         int64          `json:"totalTimeSpent"`
	AverageTimePerQuestion float64        `json:"averageTimePerQuestion"`
}

// ProgressReport ภาพรวมความคืบหน้าสำหรับแสดงผล
type ProgressReport struct {
	ResponseID         string            `json:"responseId"`
	SurveyID           string            `json:"surveyId"`
	Status             ResponseStatus    `json:"status"`
	OverallProgress    float64           `json:"overallProgress"`
	Sections           []SectionProgress `json:"sections"`
	CompletedSections  int               `json:"completedSections"`
	RemainingQuestions int               `json:"remainingQuestions"`
	NextSectionID      string            `json:"nextSectionId,omitempty"`
	Warnings           []string          `json:"warnings"`
	GeneratedAt        time.Time         `json:"generatedAt"`
}

// CalculateResponseMetrics คำนวณสถิติจากสถานะปัจจุบัน (อ่านอย่างเดียว)
func (r *SurveyResponse) CalculateResponseMetrics() ResponseMetrics {
	m := ResponseMetrics{
		ResponseID:      r.ResponseID,
		Status:          r.Status,
		OverallProgress: r.OverallProgress,
		SessionCount:    len(r.Sessions),
	}
	for _, p := range r.SectionProgress {
		m.AnsweredQuestions += p.Answered
		m.TotalQuestions += p.Total
	}

	var confidenceSum float64
	confidenceCount := 0
	for _, a := range r.Answers {
		if a.IsModified {
			m.ModifiedAnswers++
		}
		if len(a.EvidenceFiles) > 0 {
			m.AnswersWithEvidence++
		}
		if a.Confidence != nil {
			confidenceSum += *a.Confidence
			confidenceCount++
		}
	}
	if confidenceCount > 0 {
		avg := round2(confidenceSum / float64(confidenceCount))
		m.AverageConfidence = &avg
	}

	// รวมเวลาของ session ที่ยังเปิดอยู่ด้วย
	m.TotalTimeSpent = r.sumSessionTime()
	if i := r.openSessionIndex(); i >= 0 {
		m.TotalTimeSpent += int64(now().Sub(r.Sessions[i].StartedAt).Seconds())
	}
	if m.AnsweredQuestions > 0 {
		m.AverageTimePerQuestion = round2(float64(m.TotalTimeSpent) / float64(m.AnsweredQuestions))
	}
	return m
}

// GenerateProgressReport สรุปความคืบหน้ารายหมวดเรียงตามลำดับหมวด
func (r *SurveyResponse) GenerateProgressReport() ProgressReport {
	report := ProgressReport{
		ResponseID:      r.ResponseID,
		SurveyID:        r.SurveyID,
		Status:          r.Status,
		OverallProgress: r.OverallProgress,
		Sections:        []SectionProgress{},
		Warnings:        append([]string{}, r.Warnings...),
		GeneratedAt:     now(),
	}
	for _, p := range r.orderedProgress() {
		report.Sections = append(report.Sections, *p)
		report.RemainingQuestions += p.Total - p.Answered
		if p.Total > 0 && p.Answered >= p.Total {
			report.CompletedSections++
		} else if report.NextSectionID == "" {
			report.NextSectionID = p.SectionID
		}
	}
	return report
}

func (r *SurveyResponse) orderedProgress() []*SectionProgress {
	out := make([]*SectionProgress, 0, len(r.SectionProgress))
	for _, p := range r.SectionProgress {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].SectionID < out[j].SectionID
	})
	return out
}
