package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/config"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
	"github.com/oksasatya/medication-reminder/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQEmailQueue, true, false, false, false, nil); err != nil {
		logger.WithError(err).Fatal("queue declare")
	}
	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			outcome, err := mailer.Handle(ctx, mg, msg.Body)
			settle(logger, msg, outcome, err)
		}
	}()

	helpers.LogInfo(logger, "email worker listening", logrus.Fields{"queue": cfg.RabbitMQEmailQueue})
	<-stop
	logger.Info("shutting down")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func settle(logger *logrus.Logger, msg amqp.Delivery, outcome mailer.Outcome, err error) {
	fields := logrus.Fields{"delivery_tag": msg.DeliveryTag}
	switch outcome {
	case mailer.Ack:
		_ = msg.Ack(false)
	case mailer.Requeue:
		helpers.LogError(logger, "send failed; requeueing", err, fields)
		_ = msg.Nack(false, true)
	default:
		helpers.LogError(logger, "dropping message", err, fields)
		_ = msg.Nack(false, false)
	}
}
