package tele

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/temoto/appanel/helpers"
	"github.com/temoto/appanel/log2"
)

type transportMqtt struct {
	log  *log2.Log
	m    mqtt.Client
	mopt *mqtt.ClientOptions

	topicConnect string
	topicState   string
	topicError   string
}

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, c Config) error {
	self.log = log
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	mqtt.WARN = log
	if c.LogDebug {
		mqtt.DEBUG = log
	}

	clientID := c.ClientID
	if clientID == "" {
		clientID = "appanel"
	}
	prefix := c.TopicPrefix
	if prefix == "" {
		prefix = clientID
	}
	credFun := func() (string, string) { return clientID, c.Password }
	self.topicConnect = fmt.Sprintf("%s/c", prefix)
	self.topicState = fmt.Sprintf("%s/w/state", prefix)
	self.topicError = fmt.Sprintf("%s/w/error", prefix)
	keepAlive := helpers.IntSecondDefault(c.KeepaliveSec, 60)
	pingTimeout := helpers.IntSecondDefault(c.PingTimeoutSec, 30)

	self.mopt = mqtt.NewClientOptions().
		AddBroker(c.Broker).
		SetBinaryWill(self.topicConnect, []byte{0x00}, 1, true).
		SetCleanSession(false).
		SetClientID(clientID).
		SetCredentialsProvider(credFun).
		SetKeepAlive(keepAlive).
		SetPingTimeout(pingTimeout).
		SetOrderMatters(false).
		SetConnectRetry(true).
		SetOnConnectHandler(self.onConnect).
		SetConnectionLostHandler(self.onConnectionLost)
	self.m = mqtt.NewClient(self.mopt)
	if token := self.m.Connect(); token.Error() != nil {
		self.log.Errorf("tele: mqtt connect: %v", token.Error())
	}
	return nil
}

func (self *transportMqtt) State(payload []byte) {
	self.m.Publish(self.topicState, 1, false, payload)
}

func (self *transportMqtt) Error(err error) {
	if err == nil {
		return
	}
	self.m.Publish(self.topicError, 1, false, []byte(err.Error()))
}

func (self *transportMqtt) Close() {
	self.m.Publish(self.topicConnect, 1, true, []byte{0x00})
	self.m.Disconnect(250)
}

func (self *transportMqtt) onConnect(c mqtt.Client) {
	self.log.Infof("tele: mqtt connected")
	c.Publish(self.topicConnect, 1, true, []byte{0x01})
}

func (self *transportMqtt) onConnectionLost(c mqtt.Client, err error) {
	self.log.Debugf("tele: mqtt connection lost: %v", err)
}
