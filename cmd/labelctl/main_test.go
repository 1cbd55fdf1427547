package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winelabel/internal/api"
	"winelabel/internal/auth"
	"winelabel/internal/client"
	"winelabel/internal/config"
	"winelabel/internal/db/mock"
	"winelabel/internal/spreadsheet"
)

// useBackend serves the API over the seeded mock database and points the global
// flags at it.
func useBackend(t *testing.T) string {
	t.Helper()
	database, err := mock.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	tokens, err := auth.NewIssuer("labelctl-test-secret", time.Hour)
	require.NoError(t, err)
	backend := httptest.NewServer(api.New(database, tokens, nil, api.Options{}).Handler())
	t.Cleanup(backend.Close)

	resetFlags(t)
	apiURL = backend.URL + api.Prefix
	return apiURL
}

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		apiURL, token, email, password = "", "", "", ""
		timeout = 0
		labelCfg = config.LabelConfig{}
		productsOutput = spreadsheet.ProductsFilename
		ingredientsOutput = spreadsheet.IngredientsFilename
		techSheetDryRun = false
	})
	apiURL, token, email, password = "", "", "", ""
	timeout = 5 * time.Second
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

func signIn(t *testing.T) {
	t.Helper()
	email, password = mock.Email, mock.Password
	cmd, out := newTestCmd()
	require.NoError(t, runLogin(cmd, nil))
	token = string(bytes.TrimSpace(out.Bytes()))
	email, password = "", ""
	require.NotEmpty(t, token)
}

func TestLoginPrintsToken(t *testing.T) {
	useBackend(t)
	email, password = mock.Email, mock.Password

	cmd, out := newTestCmd()
	require.NoError(t, runLogin(cmd, nil))
	assert.NotEmpty(t, bytes.TrimSpace(out.Bytes()))

	password = "wrong"
	cmd, _ = newTestCmd()
	err := runLogin(cmd, nil)
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, 401), "expected 401, got %v", err)
}

func TestLoginRequiresCredentials(t *testing.T) {
	resetFlags(t)
	cmd, _ := newTestCmd()
	assert.Error(t, runLogin(cmd, nil))
}

func TestCommandsRequireCredentials(t *testing.T) {
	useBackend(t)
	cmd, _ := newTestCmd()
	err := runProductsList(cmd, nil)
	assert.True(t, errors.Is(err, errNoCredentials), "got %v", err)
}

func TestProductsListSignsInWithCredentials(t *testing.T) {
	useBackend(t)
	email, password = mock.Email, mock.Password

	cmd, out := newTestCmd()
	require.NoError(t, runProductsList(cmd, nil))

	assert.Contains(t, out.String(), "SHORT CODE")
	for _, sku := range []string{"CM-2019-750", "DL-2021-750", "MR-NV-750"} {
		assert.Contains(t, out.String(), sku)
	}
	assert.NotEmpty(t, token, "the issued token should be reused")
}

func TestProductsExportThenImport(t *testing.T) {
	useBackend(t)
	signIn(t)
	productsOutput = filepath.Join(t.TempDir(), "products.xlsx")

	cmd, out := newTestCmd()
	require.NoError(t, runProductsExport(cmd, nil))
	assert.Contains(t, out.String(), "Exported 3 products")

	f, err := os.Open(productsOutput)
	require.NoError(t, err)
	rows, err := spreadsheet.ReadRows(f)
	f.Close()
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	cmd, out = newTestCmd()
	require.NoError(t, runProductsImport(cmd, []string{productsOutput}))
	assert.Contains(t, out.String(), "of 3 rows.")
}

func TestImportRefusesOtherFiles(t *testing.T) {
	useBackend(t)
	path := filepath.Join(t.TempDir(), "products.txt")
	require.NoError(t, os.WriteFile(path, []byte("name,sku\n"), 0o644))

	cmd, _ := newTestCmd()
	err := runProductsImport(cmd, []string{path})
	assert.True(t, errors.Is(err, spreadsheet.ErrUnsupportedType), "got %v", err)

	err = runIngredientsImport(cmd, []string{path})
	assert.True(t, errors.Is(err, spreadsheet.ErrUnsupportedType), "got %v", err)
}

func TestIngredientsExport(t *testing.T) {
	useBackend(t)
	signIn(t)
	ingredientsOutput = filepath.Join(t.TempDir(), "ingredients.xlsx")

	cmd, out := newTestCmd()
	require.NoError(t, runIngredientsExport(cmd, nil))
	assert.Contains(t, out.String(), "ingredients to "+ingredientsOutput)

	info, err := os.Stat(ingredientsOutput)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

const techSheet = `SUPPLIER TECHNICAL SHEET
E220 Sulfur dioxide
Gum arabic: E414
Reference 2024-E1`

func TestTechSheetDryRunPrintsAdditives(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "sheet.txt")
	require.NoError(t, os.WriteFile(path, []byte(techSheet), 0o644))
	techSheetDryRun = true

	cmd, out := newTestCmd()
	require.NoError(t, runIngredientsTechSheet(cmd, []string{path}))

	assert.Contains(t, out.String(), "E220")
	assert.Contains(t, out.String(), "sulfites")
	assert.Contains(t, out.String(), "E414")
	assert.NotContains(t, out.String(), "Imported")
}

func TestTechSheetCreatesIngredients(t *testing.T) {
	useBackend(t)
	signIn(t)
	path := filepath.Join(t.TempDir(), "sheet.txt")
	require.NoError(t, os.WriteFile(path, []byte(techSheet), 0o644))

	cmd, out := newTestCmd()
	require.NoError(t, runIngredientsTechSheet(cmd, []string{path}))
	assert.Contains(t, out.String(), "of 2 rows.")
}

func TestTechSheetWithoutAdditives(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "sheet.txt")
	require.NoError(t, os.WriteFile(path, []byte("nothing to declare"), 0o644))

	cmd, out := newTestCmd()
	require.NoError(t, runIngredientsTechSheet(cmd, []string{path}))
	assert.Contains(t, out.String(), "No additives found.")
}

func TestLabelPrintsLinks(t *testing.T) {
	base := useBackend(t)
	signIn(t)
	labelCfg = config.LabelConfig{PublicBaseURL: "https://labels.test", QRService: "https://qr.test/create", QRSize: 150}

	c, err := client.New(client.Config{BaseURL: base})
	require.NoError(t, err)
	products, err := c.ListProducts(client.WithToken(context.Background(), token))
	require.NoError(t, err)
	require.NotEmpty(t, products)
	product := products[0]
	for _, p := range products {
		if p.SKUCode == "CM-2019-750" {
			product = p
		}
	}

	// labels are public
	token = ""
	cmd, out := newTestCmd()
	require.NoError(t, runLabel(cmd, []string{product.ID}))

	assert.Contains(t, out.String(), "château margaux")
	assert.Contains(t, out.String(), "Margaux AOC")
	assert.Contains(t, out.String(), "https://labels.test/l/"+product.ID)
	assert.Contains(t, out.String(), "https://labels.test/s/"+product.ShortCode)
	assert.Contains(t, out.String(), "https://qr.test/create?")
}

func TestLabelNotFound(t *testing.T) {
	useBackend(t)
	cmd, _ := newTestCmd()
	err := runLabel(cmd, []string{"missing"})
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err), "got %v", err)
}

func TestLoadSettingsFillsEmptyFlags(t *testing.T) {
	resetFlags(t)
	timeout = 0
	apiURL = "http://override.test/api"
	original := loadConfigFunc
	t.Cleanup(func() { loadConfigFunc = original })
	loadConfigFunc = func() (config.Config, error) {
		return config.Config{
			API:   config.APIConfig{BaseURL: "http://from-env.test/api", Timeout: 3 * time.Second},
			Label: config.LabelConfig{PublicBaseURL: "https://labels.test"},
			Log:   config.LogConfig{Level: "error", Format: "text"},
		}, nil
	}

	require.NoError(t, loadSettings(&cobra.Command{}, nil))
	assert.Equal(t, "http://override.test/api", apiURL)
	assert.Equal(t, 3*time.Second, timeout)
	assert.Equal(t, "https://labels.test", labelCfg.PublicBaseURL)
}

func TestAPIFlagHelpNamesEnvironment(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("api")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)
	assert.Contains(t, flag.Usage, "WINELABEL_API_URL")
	assert.Contains(t, flag.Usage, "API_URL")
}
