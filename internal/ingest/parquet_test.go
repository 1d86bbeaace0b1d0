package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
)

type rawPlanet struct {
	PlName          string   `parquet:"pl_name"`
	Hostname        string   `parquet:"hostname"`
	DiscoveryMethod string   `parquet:"discoverymethod"`
	DiscYear        int64    `parquet:"disc_year"`
	SySnum          int32    `parquet:"sy_snum"`
	SyPnum          int32    `parquet:"sy_pnum"`
	PlOrbper        *float64 `parquet:"pl_orbper,optional"`
	PlOrbsmax       *float64 `parquet:"pl_orbsmax,optional"`
	PlRade          *float64 `parquet:"pl_rade,optional"`
	PlBmasse        *float64 `parquet:"pl_bmasse,optional"`
	PlOrbeccen      *float64 `parquet:"pl_orbeccen,optional"`
	PlInsol         *float64 `parquet:"pl_insol,optional"`
	PlEqt           *float64 `parquet:"pl_eqt,optional"`
	StSpectype      string   `parquet:"st_spectype"`
	StTeff          *float64 `parquet:"st_teff,optional"`
	StRad           *float64 `parquet:"st_rad,optional"`
	StMass          *float32 `parquet:"st_mass,optional"`
	SyVmag          *float64 `parquet:"sy_vmag,optional"`
}

type rawPlanetNoMass struct {
	PlName string `parquet:"pl_name"`
}

func TestIngestParquetSource(t *testing.T) {
	db, dialect := openTestStore(t)
	mass := float32(0.5)
	path := writeParquet(t, []rawPlanet{
		{PlName: "Kepler-22 b", Hostname: "Kepler-22", DiscoveryMethod: "Transit", DiscYear: 2011, SySnum: 1, SyPnum: 1, PlOrbper: ptr(289.8623), PlRade: ptr(2.1), StSpectype: "G5 V", StTeff: ptr(5518), StMass: &mass},
		{PlName: "11 Com b", Hostname: "11 Com", DiscoveryMethod: "Radial Velocity", DiscYear: 2007, SySnum: 2, SyPnum: 1, PlOrbper: ptr(326.03)},
	})

	summary, err := (&Ingestor{DB: db, Dialect: dialect}).Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if summary.Rows != 2 {
		t.Fatalf("Rows = %d", summary.Rows)
	}

	_, rows := dumpTable(t, db)
	kepler := rows[1]
	if kepler[0] != "Kepler-22 b" || kepler[3] != int64(2011) || kepler[4] != int64(1) {
		t.Fatalf("kepler identity = %v", kepler[:6])
	}
	if kepler[6] != 289.8623 || kepler[8] != 2.1 || kepler[16] != 0.5 {
		t.Fatalf("kepler measurements = %v", kepler)
	}
	if kepler[7] != nil {
		t.Fatalf("null semi-major axis = %#v", kepler[7])
	}
	com := rows[0]
	if com[13] != nil {
		t.Fatalf("empty spectral type = %#v, want NULL", com[13])
	}
}

func TestIngestParquetMissingColumns(t *testing.T) {
	db, dialect := openTestStore(t)
	path := filepath.Join(t.TempDir(), "partial.parquet")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	writer := parquet.NewGenericWriter[rawPlanetNoMass](file)
	if _, err := writer.Write([]rawPlanetNoMass{{PlName: "x"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	_ = file.Close()

	_, err = (&Ingestor{DB: db, Dialect: dialect}).Ingest(context.Background(), path)
	var mismatch *SchemaMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Ingest() error = %v, want *SchemaMismatchError", err)
	}
	if len(mismatch.Missing) != len(exoplanet.Columns())-1 {
		t.Fatalf("Missing = %v", mismatch.Missing)
	}
}

func writeParquet(t *testing.T, rows []rawPlanet) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.parquet")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[rawPlanet](file)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("write parquet rows: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close parquet writer: %v", err)
	}
	return path
}

func ptr(v float64) *float64 {
	return &v
}
