// File: internal/services/chat/messages.go
package chat

// User-facing texts. They are shown as model messages in the chat.
const (
	MissingKeyText = "Erro: Chave de API não configurada. Por favor, configure a variável de ambiente API_KEY."
	ApologyText    = "Desculpe, tive um problema momentâneo para consultar a sabedoria divina. Por favor, tente novamente em instantes."
	EmptyReplyText = "Sem resposta textual."
)

var suggestedQuestions = []string{
	"Como podemos organizar nossas finanças à luz da Bíblia?",
	"Sinto que perdemos a conexão emocional. O que fazer?",
	"Como resolver conflitos sem brigar?",
	"Qual é o meu papel como marido/esposa segundo Deus?",
}

// SuggestedQuestions returns a copy of the conversation starters.
func SuggestedQuestions() []string {
	return append([]string(nil), suggestedQuestions...)
}
