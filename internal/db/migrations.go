package db

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create kv table",
		sql: `
			CREATE TABLE IF NOT EXISTS kv (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
}
