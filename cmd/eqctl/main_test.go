package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/database"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
	api "github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/http"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/service"
)

func startAPI(t *testing.T) string {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "eqctl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))

	svcs, err := service.New(db, service.Options{})
	require.NoError(t, err)
	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	api.Register(app, svcs, 10<<20)

	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--api-url", url}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	url := startAPI(t)
	path := filepath.Join(t.TempDir(), "plant.csv")
	require.NoError(t, os.WriteFile(path, []byte("Equipment Name,Type,Flowrate,Pressure,Temperature\n"+
		"Pump1,Pump,10,2,25\nPump2,Pump,20,3,30\nValve1,Valve,5,1,20\n"), 0o600))

	out, err := run(t, url, "upload", path)
	require.NoError(t, err)
	assert.Contains(t, out, "as dataset 1")

	out, err = run(t, url, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Equipment")
	assert.Contains(t, out, "11.67")
	assert.Contains(t, out, "Pump")

	out, err = run(t, url, "history", "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "plant.csv")

	dir := t.TempDir()
	out, err = run(t, url, "report", "1", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "report_plant.csv.pdf"))
	assert.FileExists(t, filepath.Join(dir, "report_plant.csv.pdf"))

	out, err = run(t, url, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted dataset 1")

	_, err = run(t, url, "summary", "--id", "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvalidID(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "report", "abc")
	assert.ErrorContains(t, err, "invalid dataset id")

	_, err = run(t, "http://127.0.0.1:1", "delete", "0")
	assert.Error(t, err)
}

func TestErrorsAreReturnedNotPrinted(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--api-url", "http://127.0.0.1:1", "delete", "abc"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Empty(t, errOut.String())
	assert.Empty(t, out.String())
}
