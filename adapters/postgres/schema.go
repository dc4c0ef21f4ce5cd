package postgres

// Schema creates the battery analysis tables. One cycle row per run+cycle
// is enforced here, not in the pipeline core.
const Schema = `
CREATE TABLE IF NOT EXISTS test_projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS test_runs (
	id           TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL REFERENCES test_projects(id) ON DELETE CASCADE,
	raw_path     TEXT NOT NULL,
	channel_name TEXT NOT NULL DEFAULT '',
	cycler_type  TEXT NOT NULL CHECK (cycler_type IN ('TOYO', 'PNE')),
	capacity_mah DOUBLE PRECISION,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (raw_path, channel_name)
);
CREATE INDEX IF NOT EXISTS idx_test_runs_project ON test_runs(project_id);

CREATE TABLE IF NOT EXISTS cycle_data (
	id                  BIGSERIAL PRIMARY KEY,
	test_run_id         TEXT NOT NULL REFERENCES test_runs(id) ON DELETE CASCADE,
	cycle_number        INTEGER NOT NULL,
	original_cycle      INTEGER NOT NULL,
	chg_capacity_norm   DOUBLE PRECISION,
	dchg_capacity_norm  DOUBLE PRECISION,
	efficiency_chg_dchg DOUBLE PRECISION,
	efficiency_dchg_chg DOUBLE PRECISION,
	dchg_energy_mwh     DOUBLE PRECISION,
	rest_end_voltage_v  DOUBLE PRECISION,
	avg_voltage_v       DOUBLE PRECISION,
	peak_temperature_c  DOUBLE PRECISION,
	resistance_mohm     DOUBLE PRECISION,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (test_run_id, cycle_number)
);
CREATE INDEX IF NOT EXISTS idx_cycle_data_run ON cycle_data(test_run_id);

CREATE TABLE IF NOT EXISTS comparison_reports (
	id          TEXT PRIMARY KEY,
	test_run_id TEXT NOT NULL REFERENCES test_runs(id) ON DELETE CASCADE,
	passed      BOOLEAN NOT NULL,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_comparison_reports_run ON comparison_reports(test_run_id);
`
