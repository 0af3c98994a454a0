package fx

import (
	"github.com/openclaw/dramawatch/internal/repositories/alert"
	"github.com/openclaw/dramawatch/internal/repositories/metrics"
	"github.com/openclaw/dramawatch/internal/repositories/post"
	"github.com/openclaw/dramawatch/internal/repositories/queueitem"
	"go.uber.org/fx"
)

var Module = fx.Options(
	post.Module,
	metrics.Module,
	queueitem.Module,
	alert.Module,
)
