package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"

	"cabinrent/internal/infra/audit"
	"cabinrent/internal/infra/broker/kafka"
	"cabinrent/internal/infra/config"
	"cabinrent/internal/infra/obs"
	"cabinrent/internal/infra/storage/scylla"
)

// auditCmd archives published reservation events into Scylla.
func auditCmd() *cobra.Command {
	var (
		username string
		password string
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Consume reservation events and append them to the audit archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(cfg.KafkaBrokers) == 0 {
				return errors.New("KAFKA_BROKERS is required")
			}
			return runAudit(cmd.Context(), cfg, scylla.Options{
				Hosts:    cfg.ScyllaHosts,
				Keyspace: cfg.ScyllaKeyspace,
				Username: username,
				Password: password,
			})
		},
	}
	cmd.Flags().StringVar(&username, "scylla-user", "", "Scylla username")
	cmd.Flags().StringVar(&password, "scylla-password", "", "Scylla password")
	return cmd
}

func runAudit(ctx context.Context, cfg config.Config, opts scylla.Options) error {
	logger := obs.NewLogger(cfg.Env)

	session, err := scylla.NewSession(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	handler := &audit.Handler{Archive: scylla.NewAuditStore(session), Logger: logger}
	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = "cabinrent-audit"
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, saramaCfg, handler, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	defer consumer.Close()

	topic := cfg.KafkaTopicPrefix + "reservation.events.v1"
	logger.Info("audit consumer started", "topic", topic, "group", cfg.KafkaGroupID)
	if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
