package settings

var WebhookSecretField = webhookSecretField
