package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/metakernel/internal/requestctx"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Audit logs every attempted command with the request identifiers. It
// never rejects.
type Audit struct {
	Logger logrus.FieldLogger
}

func (Audit) Name() string { return NameAudit }
func (Audit) Order() int   { return 400 }

func (Audit) Supports(*types.CommandContext) bool { return true }

func (a Audit) Handle(ctx context.Context, cc *types.CommandContext, _ types.Chain) (bool, error) {
	info := requestctx.FromContext(ctx)
	orDiscard(a.Logger).WithFields(logrus.Fields{
		"command":    cc.CommandType(),
		"entity":     cc.EntityName,
		"tenant_id":  info.TenantID,
		"user_id":    info.UserID,
		"request_id": info.RequestID,
		"fields":     cc.Data.Keys(),
		"filter":     cc.Filter.Fields(),
	}).Info("command attempted")
	return true, nil
}

// ResultLog logs the outcome of every completed command.
type ResultLog struct {
	Logger logrus.FieldLogger
}

func (ResultLog) Name() string { return NameResultLog }
func (ResultLog) Order() int   { return 100 }

func (ResultLog) Supports(*types.CommandContext) bool { return true }

func (r ResultLog) Handle(_ context.Context, cc *types.CommandContext, _ types.Chain) (bool, error) {
	entry := orDiscard(r.Logger).WithFields(logrus.Fields{
		"command": cc.CommandType(),
		"entity":  cc.EntityName,
	})
	if et, ok := cc.EntityType(); ok {
		entry = entry.WithField("entity_type", et.Key())
	}
	result, _ := cc.Result()
	switch v := result.(type) {
	case types.Record:
		entry = entry.WithField("record_id", v.ID)
	case types.WriteResult:
		entry = entry.WithField("affected", v.Affected)
	case []types.Record:
		entry = entry.WithField("records", len(v))
	}
	entry.Debug("command completed")
	return true, nil
}
