package hcp

// StaticVersion is the current value of a static secret.
type StaticVersion struct {
	Version   int    `json:"version,omitempty"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SecretRecord is one entry in an HCP Vault Secrets response. Only Name and
// StaticVersion are read; everything else the API returns passes through the
// handoff file untouched because the raw body is written verbatim.
type SecretRecord struct {
	Name          string         `json:"name"`
	StaticVersion *StaticVersion `json:"static_version,omitempty"`
}

// SecretsDocument is the top-level shape of the secrets:open response and of
// the local handoff file consumed by check.
type SecretsDocument struct {
	Secrets []SecretRecord `json:"secrets"`
}
