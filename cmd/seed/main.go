package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/config"
	"github.com/oksasatya/medication-reminder/internal/application/usecase"
	"github.com/oksasatya/medication-reminder/internal/container"
	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	pginfra "github.com/oksasatya/medication-reminder/internal/infrastructure/postgres"
	"github.com/oksasatya/medication-reminder/internal/session"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
)

const (
	demoName     = "Usuario Demo"
	demoEmail    = "demo@medication-reminder.local"
	demoPassword = "password123"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if cfg.Backend != config.BackendPostgres {
		logger.Warn("BACKEND is not postgres; seeded data lives only in this process")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build container")
	}
	defer c.Close()

	if cfg.Backend == config.BackendPostgres {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
	}

	ctx = session.NewContext(ctx, session.NewHolder(nil))
	ucs, err := c.UserUseCases()
	if err != nil {
		logger.WithError(err).Fatal("user backend unavailable")
	}

	u, err := seedUser(ctx, ucs, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed demo user")
	}

	meds, err := c.MedicamentoUseCases(u.ID)
	if err != nil {
		logger.WithError(err).Fatal("medicamento backend unavailable")
	}
	for _, m := range []entity.Medicamento{
		{ID: "seed-losartana", Nome: "Losartana", Dosagem: "50mg", Horario: "08:00", Frequencia: "24/24h", QuantidadeTotal: 30, Cor: "#4caf50ff"},
		{ID: "seed-metformina", Nome: "Metformina", Dosagem: "850mg", Horario: "20:00", Frequencia: "12/12h", QuantidadeTotal: 60, QuantidadeConsumida: 57, DosesDia: "2"},
	} {
		if err := meds.Adicionar.Execute(ctx, m); err != nil {
			logger.WithError(err).WithField("id", m.ID).Fatal("failed to seed medicamento")
		}
		helpers.LogInfo(logger, "seeded medicamento", logrus.Fields{"id": m.ID, "nome": m.Nome})
	}

	if err := ucs.Logout.Execute(ctx); err != nil {
		logger.WithError(err).Warn("sign out failed")
	}
}

// seedUser registers the demo account, or signs in when it already exists.
func seedUser(ctx context.Context, ucs usecase.UserUseCases, logger *logrus.Logger) (*entity.User, error) {
	u, err := ucs.Register.Execute(ctx, demoName, demoEmail, demoPassword)
	if errs.Is(err, errs.Conflict) {
		u, err = ucs.Login.Execute(ctx, demoEmail, demoPassword)
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.New(errs.Unauthenticated, "seed.User", "demo credentials rejected")
	}
	helpers.LogInfo(logger, "seeded user", logrus.Fields{"id": u.ID, "email": demoEmail})
	return u, nil
}
