package audit

import (
	"github.com/kasirhq/kasira/internal/audit/repository"
	"github.com/kasirhq/kasira/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
