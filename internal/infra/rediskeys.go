package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "taskhub"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanIdentity — сигналы об изменении учетных записей в формате "user_id:event".
	RedisChanIdentity = RedisNamespace + ":identity:changes"
)

// События учетной записи
const (
	IdentityCreated         = "created"
	IdentityUpdated         = "updated"
	IdentityPasswordChanged = "password_changed"
	IdentityDeleted         = "deleted"
)
