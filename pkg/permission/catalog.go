package permission

// Tab names of the warehouse application, in display order. The values are
// stored verbatim in tab_nome.
const (
	TabFornitori      = "Fornitori"
	TabArticoli       = "Articoli"
	TabMagazzini      = "Magazzini"
	TabGiacenze       = "Giacenze"
	TabOrdini         = "Ordini"
	TabRicevimento    = "Ricevimento"
	TabPrelievo       = "Prelievo"
	TabTrasferimenti  = "Trasferimenti"
	TabInventario     = "Inventario"
	TabMovimenti      = "Movimenti"
	TabPianificazione = "Pianificazione"
	TabUtenti         = "Utenti"
	TabRuoli          = "Ruoli"
	TabNotifiche      = "Notifiche"
)

var catalog = []string{
	TabFornitori,
	TabArticoli,
	TabMagazzini,
	TabGiacenze,
	TabOrdini,
	TabRicevimento,
	TabPrelievo,
	TabTrasferimenti,
	TabInventario,
	TabMovimenti,
	TabPianificazione,
	TabUtenti,
	TabRuoli,
	TabNotifiche,
}

// Catalog returns a copy of the tab catalog granted to the admin role
func Catalog() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}
