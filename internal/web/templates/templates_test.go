package templates

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonMunkholm/stockroom/internal/core"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestStock_EscapesUserContent(t *testing.T) {
	out := renderString(t, Stock(StockPage{
		User:     "ana@example.com",
		Query:    `"><script>`,
		Products: []core.Product{{ID: 7, Barcode: "789", Description: "Arroz <5kg>", Quantity: 3}},
		Stats:    core.StockStats{Products: 1, Units: 3},
	}))

	assert.Contains(t, out, "Arroz &lt;5kg&gt;")
	assert.Contains(t, out, `value="&#34;&gt;&lt;script&gt;"`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `<span class="user">ana@example.com</span>`)
	assert.Contains(t, out, "1 produtos, 3 unidades.")
}

func TestLogin_HasNoNav(t *testing.T) {
	out := renderString(t, Login(LoginPage{Email: "a@b.c", Error: "Email ou senha incorretos!"}))

	assert.Contains(t, out, `<html lang="pt-BR">`)
	assert.NotContains(t, out, "<nav>")
	assert.Contains(t, out, `value="a@b.c"`)
	assert.Contains(t, out, "Email ou senha incorretos!")
}

func TestImportResult_IsFragment(t *testing.T) {
	out := renderString(t, ImportResult(ImportPage{Summary: &core.ImportSummary{
		Inserted:    2,
		Failed:      1,
		Interrupted: true,
		Errors:      []core.LineError{{Line: 4, Barcode: "x", Reason: "import cancelled"}},
	}}))

	assert.NotContains(t, out, "<html")
	assert.Contains(t, out, "<h2>Resultado</h2>")
	assert.Contains(t, out, "interrompida")
	assert.Contains(t, out, "<li>Linha 4 (x): import cancelled</li>")
}

func TestImportResult_Empty(t *testing.T) {
	assert.Empty(t, renderString(t, ImportResult(ImportPage{})))
}

func TestDashboard_RecentImports(t *testing.T) {
	out := renderString(t, Dashboard(DashboardPage{
		User: "ana@example.com",
		Imports: []core.ImportRun{{
			UserEmail: "ana@example.com",
			Inserted:  5,
			Duration:  1500 * time.Millisecond,
			CreatedAt: time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local),
		}},
	}))

	assert.Contains(t, out, "09/03/2024 14:05")
	assert.Contains(t, out, `<td class="num">1500</td>`)
	assert.NotContains(t, out, "Nenhuma importação registrada.")
}

func TestScan_MissShowsAddForm(t *testing.T) {
	out := renderString(t, Scan(ScanPage{Barcode: "123"}))

	assert.Contains(t, out, "Produto não cadastrado")
	assert.Contains(t, out, `action="/adicionar-produto"`)
	assert.NotContains(t, out, "/atualizar-produto")
}

func TestErrorAlert(t *testing.T) {
	out := renderString(t, ErrorAlert("Falhou", "Tente de novo.", "IMP001"))
	assert.Contains(t, out, "<strong>Falhou</strong> Tente de novo.")
	assert.Contains(t, out, "(IMP001)")
}

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.n++
	return 0, errors.New("closed")
}

func TestRender_StopsOnWriteError(t *testing.T) {
	w := &failingWriter{}
	err := Stock(StockPage{Products: make([]core.Product, 10)}).Render(context.Background(), w)
	require.Error(t, err)
	assert.Equal(t, 1, w.n)
}

func TestDatetime_Zero(t *testing.T) {
	assert.Equal(t, "-", datetime(time.Time{}))
}
