package repo

// Schema is the DDL for the listings tables. cmd binaries apply it at startup
// with --init-db; integration tests apply it against a throwaway container
const Schema = `
CREATE TABLE IF NOT EXISTS listings (
	id           bigserial PRIMARY KEY,
	source       text NOT NULL,
	source_id    text,
	title        text NOT NULL,
	description  text NOT NULL DEFAULT '',
	venue_name   text NOT NULL DEFAULT '',
	address      text NOT NULL DEFAULT '',
	city         text NOT NULL DEFAULT '',
	region       text NOT NULL DEFAULT '',
	url          text NOT NULL,
	signup_url   text NOT NULL DEFAULT '',
	start_utc    timestamptz,
	day_of_week  int,
	time_text    text NOT NULL DEFAULT '',
	recurrence   text NOT NULL DEFAULT '',
	status       text NOT NULL DEFAULT 'ACTIVE',
	scraped_hash text,
	created_at   timestamptz NOT NULL DEFAULT now(),
	updated_at   timestamptz NOT NULL DEFAULT now(),
	UNIQUE (source, source_id),
	UNIQUE (scraped_hash)
);

CREATE INDEX IF NOT EXISTS listings_city_idx ON listings (lower(city));
CREATE INDEX IF NOT EXISTS listings_start_idx ON listings (start_utc);

CREATE TABLE IF NOT EXISTS leads (
	id          uuid PRIMARY KEY,
	url         text NOT NULL UNIQUE,
	source      text NOT NULL,
	title       text NOT NULL DEFAULT '',
	snippet     text NOT NULL DEFAULT '',
	raw         text NOT NULL DEFAULT '',
	normalized  text NOT NULL DEFAULT '',
	seen_hash   text NOT NULL,
	status      text NOT NULL DEFAULT 'NEW',
	created_at  timestamptz NOT NULL DEFAULT now(),
	updated_at  timestamptz NOT NULL DEFAULT now(),
	reviewed_at timestamptz
);

CREATE INDEX IF NOT EXISTS leads_status_idx ON leads (status);

CREATE TABLE IF NOT EXISTS ingest_log (
	id        bigserial PRIMARY KEY,
	source    text NOT NULL,
	succeeded boolean NOT NULL,
	message   text NOT NULL DEFAULT '',
	ts        timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ingest_log_source_idx ON ingest_log (source, ts DESC);
`
