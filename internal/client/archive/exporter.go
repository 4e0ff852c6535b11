package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
)

type Exporter struct {
	mirror mirror.Repository
	sink   Sink
	logger logging.Logger
	now    func() time.Time
}

func NewExporter(m mirror.Repository, sink Sink, logger logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Exporter{mirror: m, sink: sink, logger: logger, now: time.Now}
}

// Export builds a report and hands it to the sink.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	now := e.now()
	report, err := Build(ctx, e.mirror, now)
	if err != nil {
		return "", err
	}
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	loc, err := e.sink.Put(ctx, FileName(now), body)
	if err != nil {
		return "", err
	}
	e.logger.Info(ctx, "system report exported", "location", loc, "bytes", len(body))
	return loc, nil
}
