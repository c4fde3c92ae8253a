package reports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf"

	"scorecard/internal/domain/org"
)

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

type reportRow struct {
	ElementName string
	ElementType string
	Actual      *string
	Target      *string
	Score       *float64
	Color       *string
	PeriodDate  *time.Time
}

// GenerateScorecardPDF renders an organization's KPIs with their most
// recent scored values and returns the written file path.
func (s *Service) GenerateScorecardPDF(ctx context.Context, orgID string) (string, error) {
	var orgName string
	if err := s.DB.QueryRow(ctx, `SELECT name FROM organizations WHERE id = $1`, orgID).Scan(&orgName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", org.ErrNotFound
		}
		return "", err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT e.name, e.element_type, v.actual_value, v.target_value, v.score, v.color, v.period_date
    FROM scorecard_elements e
    LEFT JOIN kpis k ON k.element_id = e.id
    LEFT JOIN LATERAL (
      SELECT actual_value, target_value, score, color, period_date
      FROM kpi_values
      WHERE kpi_id = k.id
      ORDER BY period_date DESC
      LIMIT 1
    ) v ON true
    WHERE e.organization_id = $1
    ORDER BY e.order_index, e.name
  `, orgID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var report []reportRow
	for rows.Next() {
		var row reportRow
		if err := rows.Scan(&row.ElementName, &row.ElementType, &row.Actual, &row.Target, &row.Score, &row.Color, &row.PeriodDate); err != nil {
			return "", err
		}
		report = append(report, row)
	}

	if err := os.MkdirAll("storage/reports", 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join("storage/reports", orgID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Scorecard Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Organization: %s", orgName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(10)

	for _, row := range report {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, fmt.Sprintf("%s (%s)", row.ElementName, row.ElementType))
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, fmt.Sprintf("  actual: %s  target: %s  score: %s  status: %s",
			textOrDash(row.Actual), textOrDash(row.Target), scoreOrDash(row.Score), textOrDash(row.Color)))
		pdf.Ln(6)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

func textOrDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}

func scoreOrDash(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *score)
}
