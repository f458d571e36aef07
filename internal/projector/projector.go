// Package projector writes training plans into the persisted HTML document.
package projector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"training-planner/internal/domain"
)

// Store holds the template document. Save replaces the whole document; a
// reader never observes a partial write.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
}

const (
	OpRead  = "read"
	OpWrite = "write"
)

// DocumentError reports a failed read or write of the backing document.
type DocumentError struct {
	Op  string
	Err error
}

func (e *DocumentError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("projector: %s document: %v", e.Op, e.Err)
}

func (e *DocumentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Report lists which regions a projection rewrote and which it skipped
// because the document does not contain them.
type Report struct {
	Updated []string
	Missing []string
}

type step struct {
	region Region
	render func() ([]byte, error)
}

func steps(plan domain.TrainingPlan) []step {
	var out []step
	if plan.Title != nil && *plan.Title != "" {
		title := *plan.Title
		out = append(out, step{TitleRegion, func() ([]byte, error) { return renderText(title) }})
	}
	if plan.Subtitle != nil && *plan.Subtitle != "" {
		subtitle := *plan.Subtitle
		out = append(out, step{SubtitleRegion, func() ([]byte, error) { return renderText(subtitle) }})
	}
	if plan.Schedule != nil {
		out = append(out, step{ScheduleRegion, func() ([]byte, error) { return renderSchedule(plan.Schedule) }})
	}
	if plan.Tips != nil {
		out = append(out, step{TipsRegion, func() ([]byte, error) { return renderTips(plan.Tips) }})
	}
	if plan.Strategies != nil {
		out = append(out, step{StrategiesRegion, func() ([]byte, error) { return renderStrategies(plan.Strategies) }})
	}
	return out
}

// Project returns doc with every region named by plan rewritten. Regions the
// plan leaves unset, and regions the document lacks, keep their bytes.
// Projecting the same plan twice gives the same bytes as projecting it once.
func Project(doc []byte, plan domain.TrainingPlan) ([]byte, Report, error) {
	var report Report
	for _, s := range steps(plan) {
		content, err := s.render()
		if err != nil {
			return nil, Report{}, err
		}
		var found bool
		doc, found = replaceInterior(doc, s.region, content)
		if found {
			report.Updated = append(report.Updated, s.region.Name)
		} else {
			report.Missing = append(report.Missing, s.region.Name)
		}
	}
	return doc, report, nil
}

// Projector applies plans to the document held by a Store. Apply calls on one
// Projector are serialised; separate processes sharing a store are not, and
// the last writer wins.
type Projector struct {
	store Store
	log   *slog.Logger
	mu    sync.Mutex
}

func New(store Store, log *slog.Logger) (*Projector, error) {
	if store == nil {
		return nil, errors.New("projector: store must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Projector{store: store, log: log}, nil
}

// Apply reads the document, projects plan into it and saves the result. On a
// read failure nothing is written.
func (p *Projector) Apply(ctx context.Context, plan domain.TrainingPlan) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.store.Load(ctx)
	if err != nil {
		return Report{}, &DocumentError{Op: OpRead, Err: err}
	}
	out, report, err := Project(doc, plan)
	if err != nil {
		return Report{}, err
	}
	if err := p.store.Save(ctx, out); err != nil {
		return Report{}, &DocumentError{Op: OpWrite, Err: err}
	}
	if len(report.Missing) > 0 {
		p.log.Warn("document regions not found", "regions", report.Missing)
	}
	p.log.Debug("document projected", "updated", report.Updated, "bytes", len(out))
	return report, nil
}

// Document returns the current document bytes.
func (p *Projector) Document(ctx context.Context) ([]byte, error) {
	doc, err := p.store.Load(ctx)
	if err != nil {
		return nil, &DocumentError{Op: OpRead, Err: err}
	}
	return doc, nil
}
