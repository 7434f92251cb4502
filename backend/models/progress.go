package models

import "time"

// UserProgress is the rolling per-user aggregate shown on the dashboard.
type UserProgress struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       string            `gorm:"uniqueIndex;not null" json:"userId"`
	TotalTests   int               `json:"totalTests"`
	Streak       int               `json:"streak"`
	LastTestDate time.Time         `json:"lastTestDate"`
	Subjects     []SubjectProgress `gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE" json:"subjects"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// SubjectProgress holds the running average for one subject.
type SubjectProgress struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	ProgressID uint    `gorm:"uniqueIndex:idx_progress_subject;not null" json:"-"`
	Subject    Subject `gorm:"uniqueIndex:idx_progress_subject;not null" json:"subject"`
	Average    float64 `gorm:"check:average >= 0 AND average <= 100" json:"average"`
	Tests      int     `json:"tests"`
}

// Average returns the subject's average percentage, or 0 if no test of
// that subject has been taken.
func (p *UserProgress) Average(subject Subject) float64 {
	for _, sp := range p.Subjects {
		if sp.Subject == subject {
			return sp.Average
		}
	}
	return 0
}

// Subject returns the entry for subject, appending an empty one if missing.
func (p *UserProgress) Subject(subject Subject) *SubjectProgress {
	for i := range p.Subjects {
		if p.Subjects[i].Subject == subject {
			return &p.Subjects[i]
		}
	}
	p.Subjects = append(p.Subjects, SubjectProgress{ProgressID: p.ID, Subject: subject})
	return &p.Subjects[len(p.Subjects)-1]
}

// Averages maps every known subject to its average.
func (p *UserProgress) Averages() map[Subject]float64 {
	out := make(map[Subject]float64, len(Subjects))
	for _, s := range Subjects {
		out[s] = p.Average(s)
	}
	return out
}

// Clone returns a deep copy.
func (p *UserProgress) Clone() *UserProgress {
	if p == nil {
		return nil
	}
	c := *p
	c.Subjects = append([]SubjectProgress(nil), p.Subjects...)
	return &c
}
