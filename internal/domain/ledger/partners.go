package ledger

import (
	"fmt"

	"github.com/opendoors/balance-dual/internal/domain/entity"
)

// BalanceByPartner los tres balances de cada socio conocido. La entrada se reparte por socio
// en una sola pasada; los socios sin registros aparecen con balances en cero.
// Los registros de socios no configurados (o sin socio) no se asignan a nadie.
// Los socios se recorren en el orden de la configuración: el primer error es siempre el mismo.
// f.Partner se ignora.
func (e *Engine) BalanceByPartner(records []*entity.InvoiceRecord, f Filter) (map[entity.Partner]PartnerBalances, error) {
	buckets := make(map[entity.Partner][]*entity.InvoiceRecord, len(e.settings.Partners))
	for _, p := range e.settings.Partners {
		buckets[p] = nil
	}
	for _, r := range records {
		if r == nil {
			continue
		}
		if _, known := buckets[r.Partner]; known {
			buckets[r.Partner] = append(buckets[r.Partner], r)
		}
	}

	out := make(map[entity.Partner]PartnerBalances, len(buckets))
	for _, partner := range e.settings.Partners {
		bucket := buckets[partner]
		pf := Filter{Partner: partner, Start: f.Start, End: f.End}
		vat, err := e.BalanceVAT(bucket, pf)
		if err != nil {
			return nil, fmt.Errorf("socio %s: %w", partner, err)
		}
		realBal, err := e.BalanceReal(bucket, pf)
		if err != nil {
			return nil, fmt.Errorf("socio %s: %w", partner, err)
		}
		fiscal, err := e.BalanceFiscal(bucket, pf)
		if err != nil {
			return nil, fmt.Errorf("socio %s: %w", partner, err)
		}
		out[partner] = PartnerBalances{VAT: vat, Real: realBal, Fiscal: fiscal}
	}
	return out, nil
}
