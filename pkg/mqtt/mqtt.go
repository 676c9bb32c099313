// Package mqtt connects the bot to an MQTT broker. Completed moderation
// actions are published there and other services can query the bot over
// request/response topics.
package mqtt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/errors"
	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// TopicPrefix namespaces every topic the bot uses
const TopicPrefix = "tribe"

const (
	publishTimeout = 5 * time.Second
	qos            = 0
)

// MqttRequest is a query received on tribe/request/<name>
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse answers a request on tribe/response/<name>/<correlationId>
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// RequestHandler answers one request. The payload carries the request name
// under "_topic".
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

func requestTopic(name string) string {
	return TopicPrefix + "/request/" + name
}

func responseTopic(name, correlationID string) string {
	return TopicPrefix + "/response/" + name + "/" + correlationID
}

// MqttCommunicator publishes events and serves request topics
type MqttCommunicator struct {
	client   mqtt.Client
	clientID string

	mu       sync.RWMutex
	handlers map[string]RequestHandler
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init initializes the global MQTT communicator
func Init(host, port, username, password, clientID string) *MqttCommunicator {
	once.Do(func() {
		communicator = NewMqttCommunicator(host, port, username, password, clientID)
	})
	return communicator
}

// NewMqttCommunicator creates a communicator and starts connecting. The
// client keeps retrying in the background when the broker is unreachable and
// subscribes the request handlers again after every reconnect.
func NewMqttCommunicator(host, port, username, password, clientID string) *MqttCommunicator {
	mc := &MqttCommunicator{
		clientID: clientID,
		handlers: make(map[string]RequestHandler),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(fmt.Sprintf("%s_%s", clientID, uuid.New().String())).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(mc.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	mc.client = mqtt.NewClient(opts)

	token := mc.client.Connect()
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return mc
}

func (mc *MqttCommunicator) onConnect(_ mqtt.Client) {
	logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", mc.clientID), "MQTT")

	mc.mu.RLock()
	defer mc.mu.RUnlock()
	for name, h := range mc.handlers {
		mc.subscribe(name, h)
	}
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if !mc.IsConnected() {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
		return
	}
	mc.client.Disconnect(250)
	logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.client != nil && mc.client.IsConnected()
}

// Publish sends a message, waiting at most five seconds for delivery
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return mc.PublishContext(ctx, topic, payload)
}

// PublishContext sends a message, giving up waiting for delivery when ctx ends
func (mc *MqttCommunicator) PublishContext(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}

	token := mc.client.Publish(topic, qos, false, data)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", topic, ctx.Err())
	}
}

// On serves tribe/request/<name> with the handler. The subscription is
// renewed on every reconnect.
func (mc *MqttCommunicator) On(name string, handler RequestHandler) {
	mc.mu.Lock()
	mc.handlers[name] = handler
	mc.mu.Unlock()

	if mc.IsConnected() {
		mc.subscribe(name, handler)
	}
}

func (mc *MqttCommunicator) subscribe(name string, handler RequestHandler) {
	topic := requestTopic(name)
	mc.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		defer errors.RecoverMiddleware("MQTT " + name)()
		respTopic, response, err := serveRequest(handler, msg.Topic(), msg.Payload())
		if err != nil {
			logger.Error(fmt.Sprintf("Petición MQTT inválida en %s: %v", msg.Topic(), err), "MQTT")
			return
		}
		if err := mc.Publish(respTopic, response); err != nil {
			logger.Error(fmt.Sprintf("Error respondiendo en %s: %v", respTopic, err), "MQTT")
		}
	})
	logger.Debug("Suscrito a "+topic, "MQTT")
}

// serveRequest decodes a request received on receivedTopic, runs the
// handler and returns where and what to answer
func serveRequest(handler RequestHandler, receivedTopic string, raw []byte) (string, MqttResponse, error) {
	var request MqttRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		return "", MqttResponse{}, err
	}

	name := strings.TrimPrefix(receivedTopic, TopicPrefix+"/request/")

	payload, ok := request.Payload.(map[string]interface{})
	if !ok {
		payload = make(map[string]interface{})
	}
	payload["_topic"] = name

	response := MqttResponse{CorrelationID: request.CorrelationID}
	if data, err := handler(payload); err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}
	return responseTopic(name, request.CorrelationID), response, nil
}
