package receipt

import (
	"github.com/kasirhq/kasira/internal/cache"
	"github.com/kasirhq/kasira/internal/receipt/render"
	"github.com/kasirhq/kasira/internal/receipt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("receipt",
	fx.Provide(
		render.NewRenderer,
		cache.NewReceiptContentCache,
		service.NewService,
	),
)
