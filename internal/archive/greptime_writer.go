package archive

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeWriter archives telemetry rows to GreptimeDB via the
// ingester client.
type GreptimeWriter struct {
	client greptimeClient
	table  string
	log    *slog.Logger
}

// NewGreptimeWriter connects to a GreptimeDB endpoint.
func NewGreptimeWriter(endpoint, database string, log *slog.Logger) (*GreptimeWriter, error) {
	cfg := greptime.NewConfig(endpoint)
	if host, portStr, err := net.SplitHostPort(endpoint); err == nil {
		cfg = greptime.NewConfig(host)
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg = cfg.WithPort(port)
		}
	}
	cfg = cfg.WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeWriter{client: client, table: TableName, log: log}, nil
}

// Write inserts a single row.
func (w *GreptimeWriter) Write(row Row) error {
	return w.WriteBatch([]Row{row})
}

// WriteBatch inserts multiple rows.
func (w *GreptimeWriter) WriteBatch(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("robot_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("robot_type", types.STRING); err != nil {
		return err
	}
	for _, field := range []string{"name", "status"} {
		if err := tbl.AddFieldColumn(field, types.STRING); err != nil {
			return err
		}
	}
	for _, field := range []string{"lat", "lon", "alt", "heading", "speed", "battery", "signal"} {
		if err := tbl.AddFieldColumn(field, types.FLOAT64); err != nil {
			return err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		err := tbl.AddRow(r.RobotID, r.RobotType, r.Name, r.Status,
			r.Lat, r.Lon, r.Alt, r.Heading, r.Speed, r.Battery, r.Signal,
			r.Timestamp)
		if err != nil {
			return err
		}
	}

	ctx := ingesterContext.New(context.Background())
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.log.Warn("archive write failed", "rows", len(rows), "error", err)
		return err
	}
	return nil
}
