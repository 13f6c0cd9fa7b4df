package catalog_indexer

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/turtacn/ProductMatch/internal/domain/catalog"
	"github.com/turtacn/ProductMatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ProductMatch/internal/intelligence/common"
	"github.com/turtacn/ProductMatch/pkg/errors"
)

// PreprocessReport summarises one enrichment pass.
type PreprocessReport struct {
	Total            int           `json:"total"`
	Enriched         int           `json:"enriched"`
	Skipped          int           `json:"skipped"`
	BrandFailures    int           `json:"brand_failures"`
	ModelFailures    int           `json:"model_failures"`
	BrandFailureRate float64       `json:"brand_failure_rate"`
	ModelFailureRate float64       `json:"model_failure_rate"`
	Duration         time.Duration `json:"duration"`
	Warnings         []string      `json:"warnings,omitempty"`
}

// PreprocessCatalog runs one full enrichment pass.  Entries with a blank name
// are skipped; every other entry yields exactly one EnrichedEntry, even when
// brand or model could not be derived.
func (p *preparerImpl) PreprocessCatalog(entries []catalog.Entry) ([]*catalog.EnrichedEntry, PreprocessReport) {
	start := p.now()
	p.mu.RLock()
	brands := p.brands
	p.mu.RUnlock()

	report := PreprocessReport{Total: len(entries)}
	out := make([]*catalog.EnrichedEntry, 0, len(entries))

	for _, e := range entries {
		if !e.HasName() {
			report.Skipped++
			p.logger.Warn("catalog entry skipped: blank name",
				logging.String("entry_id", e.ID),
				logging.Err(errors.New(errors.CodeCatalogEntryBad, "entry has no display name").WithDetail(e.ID)))
			continue
		}
		enriched, brandOK, modelOK := p.enrich(brands, e, start)
		if !brandOK {
			report.BrandFailures++
		}
		if !modelOK {
			report.ModelFailures++
		}
		out = append(out, enriched)
	}

	report.Enriched = len(out)
	if report.Enriched > 0 {
		report.BrandFailureRate = float64(report.BrandFailures) / float64(report.Enriched)
		report.ModelFailureRate = float64(report.ModelFailures) / float64(report.Enriched)
	}
	report.Duration = p.now().Sub(start)

	if report.BrandFailureRate > p.cfg.BrandFailureThreshold {
		report.Warnings = append(report.Warnings, fmt.Sprintf("brand failure rate %.1f%% exceeds %.1f%%",
			report.BrandFailureRate*100, p.cfg.BrandFailureThreshold*100))
	}
	if report.ModelFailureRate > p.cfg.ModelFailureThreshold {
		report.Warnings = append(report.Warnings, fmt.Sprintf("model failure rate %.1f%% exceeds %.1f%%",
			report.ModelFailureRate*100, p.cfg.ModelFailureThreshold*100))
	}
	if report.Duration > p.cfg.SlowPassThreshold {
		report.Warnings = append(report.Warnings, fmt.Sprintf("enrichment took %s, over %s",
			report.Duration, p.cfg.SlowPassThreshold))
	}
	for _, w := range report.Warnings {
		p.logger.Warn("catalog quality: "+w, logging.Int("entries", report.Enriched))
	}

	p.mu.Lock()
	p.stats.Preprocess = report
	p.matchable = report.Enriched
	p.mu.Unlock()

	p.metrics.RecordIndexBuild("enrichment", report.Enriched, report.Skipped, float64(report.Duration.Microseconds())/1000)
	p.logger.Info("catalog enriched",
		logging.Int("total", report.Total),
		logging.Int("enriched", report.Enriched),
		logging.Int("skipped", report.Skipped),
		logging.Int("brand_failures", report.BrandFailures),
		logging.Int("model_failures", report.ModelFailures),
		logging.Duration("duration", report.Duration))
	return out, report
}

func (p *preparerImpl) enrich(brands []catalog.Brand, e catalog.Entry, at time.Time) (*catalog.EnrichedEntry, bool, bool) {
	out := &catalog.EnrichedEntry{Entry: e, EnrichedAt: at}

	row, brandOK := resolveBrand(brands, e)
	if brandOK {
		out.ExtractedBrand = row.Name
	}
	m, modelOK := p.index.ExtractModel(e.Name, row.Forms())
	if modelOK {
		out.ExtractedModel = m.Value
		out.NormalizedModel = common.CompactModel(m.Value)
	}

	specLen := 0
	for _, vals := range p.collectValues(e) {
		for _, v := range vals {
			specLen += utf8.RuneCountInString(v)
		}
	}
	simplicity := utf8.RuneCountInString(strings.TrimSpace(e.Name)) -
		brandLenInName(row, e.Name) -
		utf8.RuneCountInString(out.ExtractedModel) -
		specLen
	if simplicity > 0 {
		out.Simplicity = simplicity
	}
	return out, brandOK, modelOK
}

// brandLenInName is the rune length of the brand form that appears in name,
// falling back to the canonical name.
func brandLenInName(row catalog.Brand, name string) int {
	lower := strings.ToLower(name)
	for _, f := range row.Forms() {
		if strings.Contains(lower, strings.ToLower(f)) {
			return utf8.RuneCountInString(f)
		}
	}
	return utf8.RuneCountInString(row.Name)
}

//Personal.AI order the ending
