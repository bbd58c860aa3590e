package adapter

import (
	"context"
	"errors"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
)

// BigQuery is an interface for writing evaluation data to BigQuery
type BigQuery interface {
	// EnsureTable creates the table with schema unless it already exists
	EnsureTable(ctx context.Context, datasetID, tableID string, schema bigquery.Schema) error

	// Insert streams rows into a table
	Insert(ctx context.Context, datasetID, tableID string, rows []bigquery.ValueSaver) error
}

type bigqueryClient struct {
	client *bigquery.Client
}

// BigQueryOption is a functional option for BigQuery client
type BigQueryOption func(*bigqueryClient)

// NewBigQuery creates a new BigQuery client
func NewBigQuery(ctx context.Context, projectID string, opts ...BigQueryOption) (BigQuery, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client")
	}

	bq := &bigqueryClient{
		client: client,
	}

	for _, opt := range opts {
		opt(bq)
	}

	return bq, nil
}

func (bq *bigqueryClient) EnsureTable(ctx context.Context, datasetID, tableID string, schema bigquery.Schema) error {
	tbl := bq.client.Dataset(datasetID).Table(tableID)

	_, err := tbl.Metadata(ctx)
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return goerr.Wrap(err, "failed to get table metadata",
			goerr.V("dataset", datasetID), goerr.V("table", tableID))
	}

	if err := tbl.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return goerr.Wrap(err, "failed to create table",
			goerr.V("dataset", datasetID), goerr.V("table", tableID))
	}
	return nil
}

func (bq *bigqueryClient) Insert(ctx context.Context, datasetID, tableID string, rows []bigquery.ValueSaver) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := bq.client.Dataset(datasetID).Table(tableID).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return goerr.Wrap(err, "failed to insert rows",
			goerr.V("dataset", datasetID), goerr.V("table", tableID), goerr.V("rows", len(rows)))
	}
	return nil
}
