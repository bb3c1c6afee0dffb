package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/rates"
	"github.com/jhoicas/Contabilidad-api/internal/application/report"
	"github.com/jhoicas/Contabilidad-api/internal/application/session"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Contabilidad-api/internal/interfaces/cli"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// publishedOn fuente que solo publica tasa para un día.
type publishedOn struct {
	day   string
	price decimal.Decimal
}

func (p publishedOn) History(_ context.Context, date time.Time) ([]entity.RatePoint, error) {
	if entity.FormatDate(date) != p.day {
		return nil, nil
	}
	t, _ := entity.ParseDate(p.day)
	return []entity.RatePoint{{Price: p.price, LastUpdate: t.Format("02/01/2006") + ", 09:00 AM"}}, nil
}

type pdfStub struct{}

func (pdfStub) GenerateSummaryPDF(context.Context, report.Summary, []entity.Transaction) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

// fixedEnv sesión compartida entre ejecuciones para poder encadenar comandos.
func fixedEnv(t *testing.T, source repository.RateSource) (*cli.Env, cli.Opener) {
	t.Helper()
	sess := session.New(session.Options{
		KV:         memstore.NewKV(),
		Source:     source,
		MaxRetries: 3,
		Clock:      func() time.Time { return time.Date(2024, 1, 22, 10, 0, 0, 0, time.Local) },
	}, logger.Nop())
	t.Cleanup(sess.Close)
	require.NoError(t, sess.SetIdentity(context.Background(), nil, true))

	env := &cli.Env{
		Session: sess,
		Reports: report.NewService(sess.Ledger.Transactions, pdfStub{}),
		Close:   func() {},
	}
	return env, func(context.Context, *cli.RootOptions) (*cli.Env, error) { return env, nil }
}

func run(t *testing.T, open cli.Opener, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := cli.NewRootCommand(open)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// ──────────────────────────────────────────────────────────────────────────────
// Estructura
// ──────────────────────────────────────────────────────────────────────────────

func TestRootCommand_Subcomandos(t *testing.T) {
	cmd := cli.NewRootCommand(nil)
	for _, path := range [][]string{{"rates", "acquire"}, {"rates", "resolve"}, {"summary"}} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "%v debe existir", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}
	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, cli.FormatText, format.DefValue)
}

func TestRootCommand_FormatoInvalido(t *testing.T) {
	_, open := fixedEnv(t, nil)
	_, err := run(t, open, "summary", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tasas
// ──────────────────────────────────────────────────────────────────────────────

func TestRatesAcquire_RetrocedeHastaHallarTasa(t *testing.T) {
	env, open := fixedEnv(t, publishedOn{day: "2024-01-19", price: decimal.RequireFromString("36.12")})

	out, err := run(t, open, "rates", "acquire", "--date", "2024-01-21", "--format", "json")
	require.NoError(t, err)

	var res rates.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Rate)
	assert.Equal(t, "36.12", res.Rate.String())
	assert.Equal(t, "2024-01-19", res.DateFound)

	got, ok := env.Session.Book.ResolveExact("2024-01-21")
	require.True(t, ok)
	assert.Equal(t, "36.12", got.String())
}

func TestRatesAcquire_AgotadoEsError(t *testing.T) {
	_, open := fixedEnv(t, publishedOn{day: "2023-12-01", price: decimal.NewFromInt(30)})
	_, err := run(t, open, "rates", "acquire", "--date", "2024-01-21")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-01-21")
}

func TestRatesAcquire_SinFuenteEsError(t *testing.T) {
	_, open := fixedEnv(t, nil)
	_, err := run(t, open, "rates", "acquire")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATES_BASE_URL")
}

func TestRatesResolve_FallbackYExacto(t *testing.T) {
	env, open := fixedEnv(t, nil)
	require.NoError(t, env.Session.Book.Update(context.Background(), "2024-01-20", decimal.NewFromInt(36)))

	out, err := run(t, open, "rates", "resolve", "--date", "2024-01-22")
	require.NoError(t, err)
	assert.Contains(t, out, "36 Bs/USD (tasa del 2024-01-20)")

	out, err = run(t, open, "rates", "resolve", "--date", "2024-01-22", "--exact", "--format", "json")
	require.NoError(t, err)
	var resp dto.ResolvedRateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Nil(t, resp.Rate)
	assert.Equal(t, "exact", resp.Mode)

	_, err = run(t, open, "rates", "resolve")
	assert.Error(t, err, "--date es obligatorio")
}

// ──────────────────────────────────────────────────────────────────────────────
// Resumen
// ──────────────────────────────────────────────────────────────────────────────

func TestSummary_TextoYPDF(t *testing.T) {
	env, open := fixedEnv(t, nil)
	rate := decimal.NewFromInt(36)
	_, err := env.Session.Ledger.Transactions.Add(context.Background(), dto.TransactionRequest{
		Type: entity.TransactionIncome, Date: "2024-01-10", Description: "Venta",
		Category: "Ventas", AmountBs: decimal.NewFromInt(720), ExchangeRate: &rate,
	})
	require.NoError(t, err)

	pdfPath := filepath.Join(t.TempDir(), "enero.pdf")
	out, err := run(t, open, "summary", "--from", "2024-01-01", "--to", "2024-01-31", "--pdf", pdfPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Transacciones: 1")
	assert.Contains(t, out, "Bs 720.00  |  USD 20.00")
	assert.Contains(t, out, "Ventas")

	raw, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-stub", string(raw))

	_, err = run(t, open, "summary", "--from", "2024-02-01", "--to", "2024-01-01")
	assert.Error(t, err, "rango invertido")
}
