package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/noah-isme/eval-lab-api/internal/models"
)

// csvHeader fixes the column order of the evaluation log. Existing log
// files depend on it, so the order never changes.
var csvHeader = []string{
	"timestamp", "batch_id", "row_type", "model", "temperature", "question", "answer", "judge_feedback",
	"judge_prompt", "total_rating(1-10)", "validation_status", "relevance_score",
	"clarity_score", "consistency_score", "creativity_score",
}

const timestampLayout = "2006-01-02 15:04:05"

// EvaluationLog is the append-only store of evaluation results. Rows are
// never mutated or deleted.
type EvaluationLog interface {
	Append(ctx context.Context, row models.EvaluationRow) error
	History(ctx context.Context) ([]models.EvaluationRow, error)
}

// NewCSVEvaluationLog constructs an evaluation log backed by a CSV file at
// the given path. The file is created on first append.
func NewCSVEvaluationLog(path string) EvaluationLog {
	return &csvEvaluationLog{path: path}
}

type csvEvaluationLog struct {
	path string
	mu   sync.Mutex
}

func (l *csvEvaluationLog) Append(ctx context.Context, row models.EvaluationRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	writeHeader, err := l.needsHeader()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open evaluation log: %w", err)
	}

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return fmt.Errorf("write evaluation log header: %w", err)
		}
	}
	if err := w.Write(encodeRow(row)); err != nil {
		f.Close()
		return fmt.Errorf("write evaluation row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush evaluation log: %w", err)
	}
	return f.Close()
}

func (l *csvEvaluationLog) History(ctx context.Context) ([]models.EvaluationRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open evaluation log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read evaluation log header: %w", err)
	}

	var rows []models.EvaluationRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read evaluation row: %w", err)
		}
		row, err := decodeRow(record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *csvEvaluationLog) needsHeader() (bool, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat evaluation log: %w", err)
	}
	return info.Size() == 0, nil
}

func encodeRow(row models.EvaluationRow) []string {
	return []string{
		row.Timestamp.UTC().Format(timestampLayout),
		row.BatchID,
		string(row.RowType),
		row.Model,
		strconv.FormatFloat(float64(row.Temperature), 'f', -1, 32),
		row.Question,
		row.Answer,
		row.JudgeFeedback,
		row.JudgePrompt,
		row.TotalRating.Cell(),
		row.ValidationStatus,
		row.Relevance.Cell(),
		row.Clarity.Cell(),
		row.Consistency.Cell(),
		row.Creativity.Cell(),
	}
}

func decodeRow(record []string) (models.EvaluationRow, error) {
	ts, err := time.ParseInLocation(timestampLayout, record[0], time.UTC)
	if err != nil {
		return models.EvaluationRow{}, fmt.Errorf("parse evaluation timestamp %q: %w", record[0], err)
	}
	temperature, err := strconv.ParseFloat(record[4], 32)
	if err != nil {
		return models.EvaluationRow{}, fmt.Errorf("parse evaluation temperature %q: %w", record[4], err)
	}
	return models.EvaluationRow{
		Timestamp:        ts,
		BatchID:          record[1],
		RowType:          models.RowType(record[2]),
		Model:            record[3],
		Temperature:      float32(temperature),
		Question:         record[5],
		Answer:           record[6],
		JudgeFeedback:    record[7],
		JudgePrompt:      record[8],
		TotalRating:      models.ScoreFromCell(record[9]),
		ValidationStatus: record[10],
		Relevance:        models.ScoreFromCell(record[11]),
		Clarity:          models.ScoreFromCell(record[12]),
		Consistency:      models.ScoreFromCell(record[13]),
		Creativity:       models.ScoreFromCell(record[14]),
	}, nil
}
