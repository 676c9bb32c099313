package mqtt

import (
	"context"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/logger"
)

const handlerTimeout = 10 * time.Second

// Handlers answer the request topics the bot serves
type Handlers struct {
	// Stats answers tribe/request/stats
	Stats func(ctx context.Context) (interface{}, error)
	// Commands answers tribe/request/commands
	Commands func() interface{}
}

type requestRegistrar interface {
	On(name string, callback RequestHandler)
}

// RegisterHandlers subscribes the request handlers that are set
func RegisterHandlers(r requestRegistrar, h Handlers) {
	if h.Stats != nil {
		r.On("stats", func(map[string]interface{}) (interface{}, error) {
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			defer cancel()
			return h.Stats(ctx)
		})
	}
	if h.Commands != nil {
		r.On("commands", func(map[string]interface{}) (interface{}, error) {
			return h.Commands(), nil
		})
	}
	logger.Debug("Manejadores MQTT registrados", "MQTT")
}
