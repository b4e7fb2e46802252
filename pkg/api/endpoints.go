package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hazyhaar/churn-insights/pkg/analytics"
	"github.com/hazyhaar/churn-insights/pkg/filter"
	"github.com/hazyhaar/churn-insights/pkg/ingest"
	"github.com/hazyhaar/churn-insights/pkg/kit"
	"github.com/hazyhaar/churn-insights/pkg/member"
	"github.com/hazyhaar/churn-insights/pkg/money"
	"github.com/hazyhaar/churn-insights/pkg/session"
)

// Shared request/response types used by both HTTP and MCP transports.

type uploadReq struct {
	Body io.Reader
	URL  string
	Opts ingest.Options
}

type uploadResponse struct {
	Dataset     *ingest.Dataset   `json:"dataset"`
	Records     int               `json:"records"`
	Columns     map[string]string `json:"columns"`
	Unbound     []string          `json:"unbound"`
	Passthrough []string          `json:"passthrough"`
}

type criteriaReq struct {
	Criteria filter.Criteria
}

type snapshotResponse struct {
	Criteria filter.Criteria    `json:"criteria"`
	Snapshot analytics.Snapshot `json:"snapshot"`
	Display  map[string]string  `json:"display"`
}

type recordsReq struct {
	Criteria filter.Criteria
	Offset   int
	Limit    int
}

type recordsResponse struct {
	Total   int             `json:"total"`
	Offset  int             `json:"offset"`
	Records []member.Record `json:"records"`
}

type journeyReq struct {
	MemberID string
}

type tableReq struct {
	Criteria filter.Criteria
	GroupBy  string
}

// Config carries the presentation settings shared by every transport.
type Config struct {
	Logger   *slog.Logger
	Currency money.Formatter
	// MaxUploadBytes caps HTTP upload bodies; zero means 32 MiB.
	MaxUploadBytes int64
	// AllowURLUploads lets clients ask the server to fetch an export by
	// URL. Off by default: the server would otherwise reach any address
	// a browser page tells it to.
	AllowURLUploads bool
}

// errURLDisabled rejects url uploads when AllowURLUploads is off.
var errURLDisabled = errors.New("loading exports by url is disabled on this server")

// endpoints are the kit.Endpoints backed by one session. HTTP handlers
// and MCP tools both dispatch here.
type endpoints struct {
	upload   kit.Endpoint
	snapshot kit.Endpoint
	records  kit.Endpoint
	options  kit.Endpoint
	journey  kit.Endpoint
	table    kit.Endpoint
}

func newEndpoints(sess *session.Session, cfg Config) *endpoints {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Currency.Symbol == "" {
		cfg.Currency = money.Default
	}
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(cfg.Logger, name))(ep)
	}
	return &endpoints{
		upload:   wrap("upload", uploadEndpoint(sess, cfg.AllowURLUploads)),
		snapshot: wrap("snapshot", snapshotEndpoint(sess, cfg.Currency)),
		records:  wrap("records", recordsEndpoint(sess)),
		options:  wrap("options", optionsEndpoint(sess)),
		journey:  wrap("journey", journeyEndpoint(sess)),
		table:    wrap("table", tableEndpoint(sess)),
	}
}

func uploadEndpoint(sess *session.Session, allowURL bool) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*uploadReq)
		var (
			ds  *ingest.Dataset
			err error
		)
		switch {
		case req.URL != "" && !allowURL:
			return nil, errURLDisabled
		case req.URL != "":
			ds, err = sess.LoadURL(ctx, req.URL, req.Opts)
		case req.Body != nil:
			ds, err = sess.Load(req.Body, req.Opts)
		default:
			return nil, fmt.Errorf("no export given: send a file or a url")
		}
		if err != nil {
			return nil, err
		}
		resp := uploadResponse{
			Dataset:     ds,
			Records:     len(ds.Records),
			Columns:     ds.Columns(),
			Unbound:     []string{},
			Passthrough: ds.Binding.Passthrough(),
		}
		for _, f := range ds.Binding.Unbound() {
			resp.Unbound = append(resp.Unbound, f.String())
		}
		return resp, nil
	}
}

func snapshotEndpoint(sess *session.Session, cur money.Formatter) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*criteriaReq)
		snap, err := sess.Snapshot(req.Criteria)
		if err != nil {
			return nil, err
		}
		return snapshotResponse{
			Criteria: req.Criteria,
			Snapshot: snap,
			Display:  display(snap, cur),
		}, nil
	}
}

func recordsEndpoint(sess *session.Session) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*recordsReq)
		records, err := sess.Records(req.Criteria)
		if err != nil {
			return nil, err
		}
		return page(records, req.Offset, req.Limit), nil
	}
}

func optionsEndpoint(sess *session.Session) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return sess.Options()
	}
}

func journeyEndpoint(sess *session.Session) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*journeyReq)
		if req.MemberID == "" {
			return nil, fmt.Errorf("member id is required")
		}
		return sess.Journey(req.MemberID)
	}
}

func tableEndpoint(sess *session.Session) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*tableReq)
		field := member.Location
		if req.GroupBy != "" {
			f, ok := member.FieldByName(req.GroupBy)
			if !ok {
				return nil, fmt.Errorf("unknown group_by field %q", req.GroupBy)
			}
			field = f
		}
		return sess.Table(req.Criteria, field)
	}
}

// display renders the headline figures for a dashboard. Values are display
// only and never fed back into aggregation.
func display(s analytics.Snapshot, cur money.Formatter) map[string]string {
	return map[string]string{
		"totalRevenue":         cur.Format(s.TotalRevenue),
		"totalRevenueCompact":  cur.Compact(s.TotalRevenue),
		"avgRevenuePerMember":  cur.Format(s.AvgRevenuePerMember),
		"avgRevenuePerSession": cur.Format(s.AvgRevenuePerSession),
		"churnRate":            money.Percent(s.ChurnRate),
		"retentionRate":        money.Percent(s.RetentionRate),
	}
}

func page(records []member.Record, offset, limit int) recordsResponse {
	total := len(records)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}
	out := records[offset:end]
	if out == nil {
		out = []member.Record{}
	}
	return recordsResponse{Total: total, Offset: offset, Records: out}
}
