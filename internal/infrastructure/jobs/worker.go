package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// Worker envuelve el servidor asynq y el scheduler opcional.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// TaskHandler handler de un tipo de tarea.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration asocia una expresión cron a una tarea ya construida.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig dependencias del worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *logger.Logger
	Concurrency int
	Handlers    []TaskHandler
	Cron        []CronRegistration
}

// NewWorker construye el worker y registra handlers y tareas periódicas.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueDefault: 1},
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			id, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...)
			if err != nil {
				return nil, err
			}
			log.Info().Str("entry_id", id).Str("spec", entry.Spec).Str("task", entry.Task.Type()).Msg("tarea periódica registrada")
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, log: log.Component("worker")}, nil
}

// Run procesa tareas hasta que se cancele el contexto.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: no configurado")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	w.log.Info().Msg("worker iniciado")
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		w.log.Info().Msg("worker detenido")
		return nil
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client encola tareas de inventario.
type Client struct {
	client *asynq.Client
}

// NewClient construye un cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueReservationSweep encola un barrido inmediato.
func (c *Client) EnqueueReservationSweep(ctx context.Context, payload ReservationSweepPayload, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	task, err := NewReservationSweepTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, opts...)
}

// Close libera los recursos del cliente.
func (c *Client) Close() error {
	return c.client.Close()
}

// SweepCron registro periódico del barrido con la especificación dada (p. ej. "@every 6h").
func SweepCron(spec, organizationID string) (CronRegistration, error) {
	task, err := NewReservationSweepTask(ReservationSweepPayload{OrganizationID: organizationID})
	if err != nil {
		return CronRegistration{}, err
	}
	return CronRegistration{Spec: spec, Task: task}, nil
}

// RedisOpts opciones de conexión asynq a partir de la configuración de Redis.
func RedisOpts(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

// NewSweepWorker worker con el handler del barrido y su registro periódico.
// Lo usan tanto cmd/worker como la API cuando INVENTORY_EMBEDDED_WORKER está activo.
func NewSweepWorker(redis config.RedisConfig, inv config.InventoryConfig, sweeper Sweeper, log *logger.Logger) (*Worker, error) {
	cron, err := SweepCron(inv.SweepCronSpec(), inv.SweepOrganizationID)
	if err != nil {
		return nil, err
	}
	return NewWorker(WorkerConfig{
		RedisOpts: RedisOpts(redis),
		Logger:    log,
		Handlers: []TaskHandler{
			{Type: TaskReservationSweep, Handler: NewReservationSweepHandler(sweeper, log)},
		},
		Cron: []CronRegistration{cron},
	})
}

// EnqueueStartupSweep encola un barrido al arrancar para liberar lo vencido mientras el worker
// estuvo detenido. Es único por intervalo: reinicios seguidos no duplican la tarea.
// Devuelve false si ya había uno pendiente.
func EnqueueStartupSweep(ctx context.Context, redis config.RedisConfig, inv config.InventoryConfig) (bool, error) {
	c := NewClient(RedisOpts(redis))
	defer c.Close()
	_, err := c.EnqueueReservationSweep(ctx,
		ReservationSweepPayload{OrganizationID: inv.SweepOrganizationID},
		asynq.Unique(inv.SweepInterval),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
