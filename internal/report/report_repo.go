package report

import (
	"errors"

	"gorm.io/gorm"
)

// ReportRepository defines data access for reports
type ReportRepository interface {
	CreateReport(report *Report) error
	GetReportByID(id string) (*Report, error)
	ListReports(status string, page, limit int) ([]Report, int64, error)

	// TransitionStatus flips the report from one status to another and
	// returns how many rows changed. Zero rows means the report was
	// missing or no longer in the expected status; the conditional
	// UPDATE is what keeps two admins from resolving the same report
	// twice.
	TransitionStatus(id, from, to string) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CreateReport(report *Report) error {
	return r.db.Create(report).Error
}

func (r *reportRepository) GetReportByID(id string) (*Report, error) {
	var report Report
	if err := r.db.Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListReports(status string, page, limit int) ([]Report, int64, error) {
	var reports []Report
	var total int64

	query := r.db.Model(&Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, total, err
}

func (r *reportRepository) TransitionStatus(id, from, to string) (int64, error) {
	result := r.db.Model(&Report{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
