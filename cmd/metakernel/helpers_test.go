package main

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/metakernel/internal/engine"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

func TestParsePayloadKeepsOrder(t *testing.T) {
	p, err := parsePayload(`{"symbol":"ACME","qty":3,"open":true}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"symbol", "qty", "open"}, p.Keys())
	qty, _ := p.Get("qty")
	assert.Equal(t, json.Number("3"), qty)

	empty, err := parsePayload("  ")
	require.NoError(t, err)
	assert.Zero(t, empty.Len())

	_, err = parsePayload(`[1,2]`)
	assert.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    types.Filter
		wantErr error
	}{
		{name: "empty", in: "", want: types.Filter{}},
		{
			name: "shorthand",
			in:   `{"symbol":"ACME","venue.name":"XLON"}`,
			want: types.Eq("symbol", "ACME").Where("venue.name", types.OpEq, "XLON"),
		},
		{
			name: "conditions",
			in:   `{"conditions":[{"field":"qty","op":"gt","value":2}]}`,
			want: types.Filter{}.Where("qty", types.OpGt, float64(2)),
		},
		{name: "bad operator", in: `{"conditions":[{"field":"qty","op":"like"}]}`, wantErr: types.ErrInvalidFilter},
		{name: "not json", in: `{symbol`, wantErr: types.ErrInvalidFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilter(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCodeFor(nil))
	assert.Equal(t, exitUserError, exitCodeFor(&engine.ExecutionError{Kind: engine.KindRequest, Err: types.ErrContextRequired}))
	assert.Equal(t, exitUserError, exitCodeFor(&engine.ExecutionError{Kind: engine.KindExecution, Err: fmt.Errorf("x: %w", types.ErrUnknownField)}))
	assert.Equal(t, exitSysError, exitCodeFor(&engine.ExecutionError{Kind: engine.KindExecution, Err: types.ErrStoreDetached}))
	assert.Equal(t, exitSysError, exitCodeFor(&engine.ExecutionError{Kind: engine.KindConfiguration, Err: types.ErrStrategyNotBound}))
}

func TestRecordMissing(t *testing.T) {
	done := func(data any) types.Result { return types.Result{Status: types.StatusCompleted, Data: data} }

	err := recordMissing("notes", "n1", done(types.NewWriteResult("notes", []string{})))
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCodeFor(err))
	assert.ErrorIs(t, recordMissing("notes", "n1", done([]types.Record{})), types.ErrNotFound)

	assert.NoError(t, recordMissing("notes", "n1", done(types.NewWriteResult("notes", []string{"n1"}))))
	assert.NoError(t, recordMissing("notes", "", done([]types.Record{})), "filtered queries may match nothing")
	assert.NoError(t, recordMissing("notes", "n1", types.Result{Status: types.StatusNotExecuted}))
}

func TestNewDataCmdFlags(t *testing.T) {
	create := newDataCmd(types.CommandCreate)
	assert.NotNil(t, create.Flags().Lookup("data"))
	assert.Nil(t, create.Flags().Lookup("filter"))
	assert.Nil(t, create.Flags().Lookup("all"))

	update := newDataCmd(types.CommandUpdate)
	for _, name := range []string{"data", "filter", "id", "all"} {
		assert.NotNil(t, update.Flags().Lookup(name), name)
	}

	query := newDataCmd(types.CommandQuery)
	assert.Nil(t, query.Flags().Lookup("data"))
	assert.Nil(t, query.Flags().Lookup("all"))
	assert.Equal(t, "query <entity>", query.Use)
}
