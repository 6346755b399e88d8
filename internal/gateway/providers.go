package gateway

// ProviderConfig describes one provider as presented in the configuration
// surface. RequiresMaxTokens flags providers that reject requests without a
// top-level token limit.
type ProviderConfig struct {
	Name              string        `json:"name"`
	Models            []ModelOption `json:"models"`
	RequiresMaxTokens bool          `json:"requiresMaxTokens"`
}

// ProviderConfigs is the static catalog used when the gateway's /v1/models
// listing is unavailable.
var ProviderConfigs = map[string]ProviderConfig{
	"openai": {
		Name: "OpenAI",
		Models: []ModelOption{
			{ID: "gpt-4", Name: "GPT-4 (Most Capable)"},
			{ID: "gpt-4-turbo", Name: "GPT-4 Turbo (Faster, Cheaper)"},
			{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo (Fast, Cost-Effective)"},
		},
	},
	"anthropic": {
		Name: "Anthropic (Claude)",
		Models: []ModelOption{
			{ID: "claude-3-5-sonnet-20241022", Name: "Claude 3.5 Sonnet (Latest)"},
			{ID: "claude-3-opus-20240229", Name: "Claude 3 Opus (Flagship)"},
			{ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku (Fast)"},
		},
		RequiresMaxTokens: true,
	},
	"google": {
		Name: "Google AI (Gemini)",
		Models: []ModelOption{
			{ID: "gemini-2.0-flash-exp", Name: "Gemini 2.0 Flash (Experimental)"},
			{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro (Most Capable)"},
			{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash (Fast, Efficient)"},
		},
	},
	"groq": {
		Name: "Groq (Fast Inference)",
		Models: []ModelOption{
			{ID: "openai/gpt-oss-120b", Name: "GPT-OSS 120B (Recommended)"},
			{ID: "llama-3.1-70b-versatile", Name: "Llama 3.1 70B (Versatile)"},
			{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B (Ultra Fast)"},
			{ID: "mixtral-8x7b-32768", Name: "Mixtral 8x7B (Long Context)"},
		},
	},
	"deepseek": {
		Name: "Deepseek",
		Models: []ModelOption{
			{ID: "deepseek-chat", Name: "Deepseek Chat"},
			{ID: "deepseek-coder", Name: "Deepseek Coder (Specialized)"},
		},
	},
	"qwen": {
		Name: "Alibaba/Qwen",
		Models: []ModelOption{
			{ID: "qwen-max", Name: "Qwen Max (Most Capable)"},
			{ID: "qwen-plus", Name: "Qwen Plus (Balanced)"},
			{ID: "qwen-turbo", Name: "Qwen Turbo (Fast)"},
		},
	},
	"perplexity": {
		Name: "Perplexity",
		Models: []ModelOption{
			{ID: "llama-3.1-sonar-large-128k-online", Name: "Sonar Large (Online Search)"},
			{ID: "llama-3.1-sonar-small-128k-online", Name: "Sonar Small (Online)"},
			{ID: "llama-3.1-sonar-large-128k-chat", Name: "Sonar Large (Chat)"},
		},
	},
	"xai": {
		Name: "xAI (Grok)",
		Models: []ModelOption{
			{ID: "grok-beta", Name: "Grok Beta"},
		},
	},
	"openrouter": {
		Name: "OpenRouter (100+ Models)",
		Models: []ModelOption{
			{ID: "anthropic/claude-3-opus", Name: "Claude 3 Opus"},
			{ID: "openai/gpt-4", Name: "GPT-4"},
			{ID: "google/gemini-pro", Name: "Gemini Pro"},
		},
	},
	"sambanova": {
		Name: "SambaNova",
		Models: []ModelOption{
			{ID: "llama-3.1-70b", Name: "Llama 3.1 70B"},
			{ID: "llama-3.1-8b", Name: "Llama 3.1 8B"},
		},
	},
	"mistral": {
		Name: "Mistral",
		Models: []ModelOption{
			{ID: "mistral-large", Name: "Mistral Large"},
			{ID: "mistral-medium", Name: "Mistral Medium"},
			{ID: "mistral-small", Name: "Mistral Small"},
		},
	},
	"cerebras": {
		Name: "Cerebras",
		Models: []ModelOption{
			{ID: "llama3.1-8b", Name: "Llama 3.1 8B (Ultra Fast)"},
		},
	},
}

// FallbackCatalog presents the static catalog in the same shape as the
// gateway's live model listing.
func FallbackCatalog() ModelCatalog {
	catalog := ModelCatalog{}
	for provider, cfg := range ProviderConfigs {
		catalog[provider] = cfg.Models
	}
	return catalog
}
