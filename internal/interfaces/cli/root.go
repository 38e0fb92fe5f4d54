// Package cli comandos de línea de comandos para calcular balances sobre archivos exportados,
// sin base de datos.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/opendoors/balance-dual/internal/application/report"
	"github.com/opendoors/balance-dual/internal/domain/afip"
	"github.com/opendoors/balance-dual/internal/domain/coherence"
	"github.com/opendoors/balance-dual/internal/domain/entity"
	"github.com/opendoors/balance-dual/internal/domain/money"
	"github.com/opendoors/balance-dual/pkg/logger"
)

var version = "1.0.0"

// Deps dependencias de los comandos.
type Deps struct {
	Settings entity.FiscalSettings
	Clock    report.Clock
	Log      *logger.Logger
}

// NewRootCommand arma el árbol de comandos.
func NewRootCommand(deps Deps) *cobra.Command {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Balances de la contabilidad dual (IVA, real, fiscal) sobre archivos JSON",
		Long: `ledgerctl calcula los balances de la contabilidad dual a partir de un archivo
JSON con facturas exportadas. Los montos pueden venir en formato argentino
(1.234,56) o inglés (1,234.56).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("output", "text", "Formato de salida: text o json")

	root.AddCommand(
		newReportCommand(deps),
		newPartnersCommand(deps),
		newReviewCommand(deps),
		newFiscalYearsCommand(deps),
		newCUITCommand(),
		newAmountCommand(),
	)
	return root
}

// ── report ────────────────────────────────────────────────────────────────────

func newReportCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Informe integral de un año fiscal",
		Example: `  ledgerctl report --file facturas.json
  ledgerctl report --file facturas.json --partner Joni --fiscal-year 2024 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := deps.Log.WithComponent("report")
			records, err := loadFromFlag(cmd)
			if err != nil {
				return err
			}
			partner, _ := cmd.Flags().GetString("partner")
			fy, err := fiscalYearFlag(cmd)
			if err != nil {
				return err
			}
			if partner != "" && !deps.Settings.IsKnownPartner(entity.Partner(partner)) {
				return fmt.Errorf("socio desconocido %q", partner)
			}

			assembler, err := report.NewAssembler(deps.Settings, deps.Clock)
			if err != nil {
				return err
			}
			r, err := assembler.Build(records, entity.Partner(partner), fy)
			if err != nil {
				return err
			}
			log.Debug().Str("report_id", r.ID.String()).Int("records", len(records)).Msg("informe generado")

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			return writeReportText(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().String("file", "", "Archivo JSON con las facturas")
	cmd.Flags().String("partner", "", "Socio (vacío = todos)")
	cmd.Flags().Int("fiscal-year", 0, "Año fiscal (0 = vigente)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeReportText(w io.Writer, r *report.ComprehensiveReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Período\t%s\n", r.Period.Label)
	if r.Partner != "" {
		fmt.Fprintf(tw, "Socio\t%s\n", r.Partner)
	}
	fmt.Fprintf(tw, "ID\t%s\n", r.ID)
	fmt.Fprintln(tw, "\t")
	fmt.Fprintf(tw, "IVA débito\t%s\n", money.Format(r.VAT.TaxCollected, true))
	fmt.Fprintf(tw, "IVA crédito\t%s\n", money.Format(r.VAT.TaxPaid, true))
	fmt.Fprintf(tw, "Balance IVA\t%s (%s)\n", money.Format(r.VAT.Balance, true), r.VAT.State)
	fmt.Fprintln(tw, "\t")
	fmt.Fprintf(tw, "\tReal\tFiscal\n")
	fmt.Fprintf(tw, "Ingresos\t%s\t%s\n", money.Format(r.Real.Income, true), money.Format(r.Fiscal.Income, true))
	fmt.Fprintf(tw, "Egresos\t%s\t%s\n", money.Format(r.Real.Expense, true), money.Format(r.Fiscal.Expense, true))
	fmt.Fprintf(tw, "Balance\t%s\t%s\n", money.Format(r.Real.Balance, true), money.Format(r.Fiscal.Balance, true))
	fmt.Fprintf(tw, "Margen %%\t%s\t%s\n", money.Format(r.Real.Margin, false), money.Format(r.Fiscal.Margin, false))
	fmt.Fprintln(tw, "\t")
	fmt.Fprintf(tw, "Ganancias\t%s (%s)\n", money.Format(r.IncomeTax.Tax, true), r.IncomeTax.State)
	fmt.Fprintf(tw, "Brecha fiscal - real\t%s\n", money.Format(r.Indicators.RealFiscalGap, true))
	return tw.Flush()
}

// ── partners ──────────────────────────────────────────────────────────────────

func newPartnersCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partners",
		Short: "Balances por socio de un año fiscal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := loadFromFlag(cmd)
			if err != nil {
				return err
			}
			fy, err := fiscalYearFlag(cmd)
			if err != nil {
				return err
			}
			assembler, err := report.NewAssembler(deps.Settings, deps.Clock)
			if err != nil {
				return err
			}
			period := assembler.ResolvePeriod(fy)
			byPartner, err := assembler.Engine().BalanceByPartner(records, period.Filter(""))
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), report.PartnerReport{Period: period, Partners: byPartner})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\n", period.Label)
			fmt.Fprintln(tw, "Socio\tBalance IVA\tBalance real\tBalance fiscal")
			for _, p := range deps.Settings.Partners {
				b := byPartner[p]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p,
					money.Format(b.VAT.Balance, true), money.Format(b.Real.Balance, true), money.Format(b.Fiscal.Balance, true))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("file", "", "Archivo JSON con las facturas")
	cmd.Flags().Int("fiscal-year", 0, "Año fiscal (0 = vigente)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// ── review ────────────────────────────────────────────────────────────────────

func newReviewCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Facturas cuyos importes no cierran (requieren revisión manual)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := loadFromFlag(cmd)
			if err != nil {
				return err
			}
			items := coherence.NewValidator(deps.Settings).WithClock(deps.Clock).CheckBatch(records)
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Sin diferencias.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Registro\tTipo\tDetalle")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", it.RecordID, it.Kind, it.Message)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("file", "", "Archivo JSON con las facturas")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// ── fiscal-years ──────────────────────────────────────────────────────────────

func newFiscalYearsCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fiscal-years",
		Short: "Últimos años fiscales, el vigente primero",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return fmt.Errorf("--limit debe ser positivo")
			}
			assembler, err := report.NewAssembler(deps.Settings, deps.Clock)
			if err != nil {
				return err
			}
			years := assembler.Calendar().ListRecent(assembler.Now(), limit)
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), years)
			}
			for _, y := range years {
				mark := " "
				if y.IsCurrent {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, y.Description)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 5, "Cantidad de años")
	return cmd
}

// ── cuit / amount ─────────────────────────────────────────────────────────────

func newCUITCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cuit <cuit>...",
		Short: "Valida el dígito verificador de uno o más CUIT",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := afip.ValidateTaxIDs(args)
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			invalid := 0
			for _, r := range results {
				switch {
				case !r.Valid:
					invalid++
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %s\n", r.Input, r.Error)
				case r.Warning != "":
					fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%s)\n", r.Formatted, r.Warning)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", r.Formatted)
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d CUIT inválido(s)", invalid)
			}
			return nil
		},
	}
}

func newAmountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "amount <monto>...",
		Short: "Normaliza montos escritos en formato argentino o inglés",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type row struct {
				Input     string           `json:"input"`
				Value     *decimal.Decimal `json:"value,omitempty"`
				Formatted string           `json:"formatted,omitempty"`
				Notation  string           `json:"notation,omitempty"`
				Error     string           `json:"error,omitempty"`
			}
			rows := make([]row, 0, len(args))
			failed := 0
			for _, raw := range args {
				p, err := money.Parse(raw)
				if err != nil {
					failed++
					rows = append(rows, row{Input: raw, Error: err.Error()})
					continue
				}
				v := p.Value
				rows = append(rows, row{Input: raw, Value: &v, Formatted: money.Format(v, true), Notation: string(p.Notation)})
			}
			if jsonOutput(cmd) {
				if err := writeJSON(cmd.OutOrStdout(), rows); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, r := range rows {
					if r.Error != "" {
						fmt.Fprintf(tw, "%s\t✗ %s\n", r.Input, r.Error)
						continue
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Input, r.Formatted, r.Notation)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d monto(s) inválido(s)", failed)
			}
			return nil
		},
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func loadFromFlag(cmd *cobra.Command) ([]*entity.InvoiceRecord, error) {
	path, _ := cmd.Flags().GetString("file")
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("--file es obligatorio")
	}
	return LoadRecordsFile(path)
}

func fiscalYearFlag(cmd *cobra.Command) (*int, error) {
	fy, _ := cmd.Flags().GetInt("fiscal-year")
	switch {
	case fy == 0:
		return nil, nil
	case fy < 1900 || fy > 9999:
		return nil, fmt.Errorf("--fiscal-year fuera de rango: %d", fy)
	}
	return &fy, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	out, _ := cmd.Flags().GetString("output")
	return strings.EqualFold(out, "json")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
