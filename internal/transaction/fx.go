package transaction

import (
	"github.com/kasirhq/kasira/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction",
	fx.Provide(
		service.NewService,
	),
)
