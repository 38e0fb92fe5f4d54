package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opendoors/balance-dual/internal/domain"
	"github.com/opendoors/balance-dual/internal/domain/coherence"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/opendoors/balance-dual/internal/domain/fiscal"
	"github.com/opendoors/balance-dual/internal/domain/ledger"
	"github.com/opendoors/balance-dual/internal/domain/repository"
	"github.com/opendoors/balance-dual/pkg/logger"
)

const (
	defaultYearsListed = 5
	maxYearsListed     = 20
	maxYearsCompared   = 10
)

// Cache caché de informes integrales. Las implementaciones versionan las claves: Bump
// invalida todo lo guardado.
type Cache interface {
	Load(ctx context.Context, key string) (*ComprehensiveReport, bool, error)
	Store(ctx context.Context, key string, r *ComprehensiveReport) error
	Bump(ctx context.Context) error
}

// Query parámetros de un balance. Start/End explícitos tienen prioridad sobre FiscalYear;
// sin ninguno se toma todo el historial.
type Query struct {
	Partner    entity.Partner
	FiscalYear *int
	Start      time.Time
	End        time.Time
}

// VATReport balance de IVA con su período.
type VATReport struct {
	Period  Period         `json:"period"`
	Partner entity.Partner `json:"partner,omitempty"`
	ledger.VATBalance
}

// CashReport balance real o fiscal con su período.
type CashReport struct {
	Period  Period         `json:"period"`
	Partner entity.Partner `json:"partner,omitempty"`
	ledger.CashBalance
}

// PartnerReport balances de todos los socios para un período.
type PartnerReport struct {
	Period   Period                                    `json:"period"`
	Partners map[entity.Partner]ledger.PartnerBalances `json:"partners"`
}

// Service casos de uso de la contabilidad dual sobre el repositorio de facturas.
type Service struct {
	repo      repository.InvoiceRecordRepository
	assembler *Assembler
	validator *coherence.Validator
	cache     Cache
	log       *logger.Logger
}

// NewService construye el servicio. cache puede ser nil (sin caché).
func NewService(repo repository.InvoiceRecordRepository, assembler *Assembler, cache Cache, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		assembler: assembler,
		validator: coherence.NewValidator(assembler.Engine().Settings()).WithClock(assembler.Now),
		cache:     cache,
		log:       log,
	}
}

// ── Balances ──────────────────────────────────────────────────────────────────

// VAT balance de IVA.
func (s *Service) VAT(ctx context.Context, q Query) (*VATReport, error) {
	period, records, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	b, err := s.assembler.Engine().BalanceVAT(records, period.Filter(q.Partner))
	if err != nil {
		return nil, fmt.Errorf("balance IVA: %w", err)
	}
	return &VATReport{Period: period, Partner: q.Partner, VATBalance: b}, nil
}

// Real balance de caja real.
func (s *Service) Real(ctx context.Context, q Query) (*CashReport, error) {
	period, records, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	b, err := s.assembler.Engine().BalanceReal(records, period.Filter(q.Partner))
	if err != nil {
		return nil, fmt.Errorf("balance real: %w", err)
	}
	return &CashReport{Period: period, Partner: q.Partner, CashBalance: b}, nil
}

// Fiscal balance fiscal (lo declarado).
func (s *Service) Fiscal(ctx context.Context, q Query) (*CashReport, error) {
	period, records, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	b, err := s.assembler.Engine().BalanceFiscal(records, period.Filter(q.Partner))
	if err != nil {
		return nil, fmt.Errorf("balance fiscal: %w", err)
	}
	return &CashReport{Period: period, Partner: q.Partner, CashBalance: b}, nil
}

// ByPartner balances de cada socio. Fechas explícitas tienen prioridad; sin ellas se usa el
// año fiscal pedido o el vigente. q.Partner se ignora.
func (s *Service) ByPartner(ctx context.Context, q Query) (*PartnerReport, error) {
	period := s.reportPeriod(q)
	records, err := s.fetch(ctx, period, "")
	if err != nil {
		return nil, err
	}
	byPartner, err := s.assembler.Engine().BalanceByPartner(records, period.Filter(""))
	if err != nil {
		return nil, fmt.Errorf("balance por socio: %w", err)
	}
	return &PartnerReport{Period: period, Partners: byPartner}, nil
}

// ── Informe integral ──────────────────────────────────────────────────────────

// Comprehensive informe integral del rango pedido, del año fiscal pedido o del vigente, en ese
// orden. Usa la caché si hay una; una falla de la caché se registra y no interrumpe el cálculo.
func (s *Service) Comprehensive(ctx context.Context, q Query) (*ComprehensiveReport, error) {
	partner := q.Partner
	if err := s.checkPartner(partner); err != nil {
		return nil, err
	}
	period := s.reportPeriod(q)
	key := cacheKey("comprehensive", string(partner), periodKey(period))

	if s.cache != nil {
		cached, ok, err := s.cache.Load(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("report: lectura de caché fallida")
		} else if ok {
			s.log.Debug().Str("key", key).Msg("report: informe servido desde caché")
			return cached, nil
		}
	}

	r, err := s.build(ctx, partner, period)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Store(ctx, key, r); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("report: escritura de caché fallida")
		}
	}
	return r, nil
}

// CompareYears informes integrales de varios años fiscales, en el orden pedido.
// Las lecturas del repositorio corren en paralelo; la primera falla cancela el resto.
func (s *Service) CompareYears(ctx context.Context, partner entity.Partner, years []int) ([]*ComprehensiveReport, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos un año fiscal", domain.ErrInvalidInput)
	}
	if len(years) > maxYearsCompared {
		return nil, fmt.Errorf("%w: se pueden comparar hasta %d años", domain.ErrInvalidInput, maxYearsCompared)
	}
	if err := s.checkPartner(partner); err != nil {
		return nil, err
	}

	out := make([]*ComprehensiveReport, len(years))
	g, gctx := errgroup.WithContext(ctx)
	for i, year := range years {
		g.Go(func() error {
			period := PeriodFromYear(s.assembler.Calendar().ForLabel(year))
			r, err := s.build(gctx, partner, period)
			if err != nil {
				return fmt.Errorf("año fiscal %d: %w", year, err)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Invalidate descarta los informes en caché.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Bump(ctx)
}

// ── Calendario y revisión ─────────────────────────────────────────────────────

// FiscalYears últimos años fiscales, el vigente primero. limit <= 0 usa el valor por defecto.
func (s *Service) FiscalYears(limit int) []fiscal.Year {
	if limit <= 0 {
		limit = defaultYearsListed
	}
	if limit > maxYearsListed {
		limit = maxYearsListed
	}
	return s.assembler.Calendar().ListRecent(s.assembler.Now(), limit)
}

// Review corre la verificación de coherencia sobre los registros no borrados del período,
// en cualquier estado, y devuelve los que requieren revisión manual.
func (s *Service) Review(ctx context.Context, q Query) ([]coherence.ReviewItem, error) {
	if err := s.checkPartner(q.Partner); err != nil {
		return nil, err
	}
	period := s.period(q)
	records, err := s.repo.FindForBalance(ctx, repository.RecordFilter{
		Start:   period.Start,
		End:     period.End,
		Partner: q.Partner,
	})
	if err != nil {
		return nil, fmt.Errorf("report: leer registros: %w", err)
	}
	items := s.validator.CheckBatch(records)
	s.log.Info().Int("records", len(records)).Int("flagged", len(items)).Msg("report: revisión de coherencia")
	return items, nil
}

// ── Internos ──────────────────────────────────────────────────────────────────

func (s *Service) build(ctx context.Context, partner entity.Partner, period Period) (*ComprehensiveReport, error) {
	records, err := s.fetch(ctx, period, partner)
	if err != nil {
		return nil, err
	}
	r, err := s.assembler.BuildPeriod(records, partner, period)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("report_id", r.ID.String()).
		Int("fiscal_year", period.FiscalYear).
		Str("partner", string(partner)).
		Int("records", len(records)).
		Msg("report: informe generado")
	return r, nil
}

func (s *Service) load(ctx context.Context, q Query) (Period, []*entity.InvoiceRecord, error) {
	if err := s.checkPartner(q.Partner); err != nil {
		return Period{}, nil, err
	}
	period := s.period(q)
	records, err := s.fetch(ctx, period, q.Partner)
	if err != nil {
		return Period{}, nil, err
	}
	return period, records, nil
}

func (s *Service) period(q Query) Period {
	switch {
	case !q.Start.IsZero() || !q.End.IsZero():
		return PeriodFromRange(q.Start, q.End)
	case q.FiscalYear != nil:
		return PeriodFromYear(s.assembler.Calendar().ForLabel(*q.FiscalYear))
	default:
		return PeriodFromRange(time.Time{}, time.Time{})
	}
}

// reportPeriod como period, pero sin fechas ni año usa el año fiscal vigente.
func (s *Service) reportPeriod(q Query) Period {
	if q.Start.IsZero() && q.End.IsZero() {
		return s.assembler.ResolvePeriod(q.FiscalYear)
	}
	return PeriodFromRange(q.Start, q.End)
}

func (s *Service) fetch(ctx context.Context, period Period, partner entity.Partner) ([]*entity.InvoiceRecord, error) {
	records, err := s.repo.FindForBalance(ctx, repository.BalanceFilter(period.Start, period.End, partner))
	if err != nil {
		return nil, fmt.Errorf("report: leer registros: %w", err)
	}
	return records, nil
}

func (s *Service) checkPartner(p entity.Partner) error {
	if p == "" || s.assembler.Engine().Settings().IsKnownPartner(p) {
		return nil
	}
	return fmt.Errorf("%w: socio desconocido %q", domain.ErrInvalidInput, p)
}

// periodKey "2024" para un año fiscal, "2024-01-01_2024-12-31" para un rango ("open" = sin límite).
func periodKey(p Period) string {
	if p.FiscalYear != 0 {
		return strconv.Itoa(p.FiscalYear)
	}
	bound := func(t time.Time) string {
		if t.IsZero() {
			return "open"
		}
		return t.Format(time.DateOnly)
	}
	return bound(p.Start) + "_" + bound(p.End)
}

func cacheKey(parts ...string) string {
	key := "report"
	for _, p := range parts {
		if p == "" {
			p = "all"
		}
		key += ":" + p
	}
	return key
}
