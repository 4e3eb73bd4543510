// File: internal/services/ai/prompt.go
package ai

import (
	"fmt"
	"strings"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/services/grounding"
)

// BuildSystemInstruction assembles the counselor persona for one turn.
func BuildSystemInstruction(user domain.UserProfile, knowledgeBase string, passages []grounding.Passage) string {
	var b strings.Builder

	b.WriteString("Você é o 'Conselheiro da Família', um conselheiro matrimonial cristão, sábio, paciente e amoroso.\n\n")

	b.WriteString("BASE DE CONHECIMENTO (APOSTILA):\n")
	b.WriteString(strings.TrimSpace(knowledgeBase))
	b.WriteString("\n\n")

	if len(passages) > 0 {
		b.WriteString("TRECHOS RELEVANTES ENCONTRADOS NA BUSCA:\n")
		for i, p := range passages {
			fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, p.Title, p.URI, strings.TrimSpace(p.Text))
		}
	}

	b.WriteString("CONTEXTO ATUAL:\n")
	fmt.Fprintf(&b, "Você está conversando com: %s.\n", user)
	fmt.Fprintf(&b, "O casal é %s e %s.\n\n", domain.ProfileMarcelo, domain.ProfileFernanda)

	b.WriteString("DIRETRIZES:\n")
	directives := []string{
		"Use os trechos encontrados na busca, quando houver, para citar versículos bíblicos, contextos teológicos ou aplicações práticas que se apliquem à situação do usuário, especialmente se não estiver explícito na apostila.",
		"Suas respostas devem integrar os princípios da Apostila fornecida com a sabedoria bíblica.",
		"Seja acolhedor e não julgue. O tom deve ser pastoral e encorajador.",
		roleDirective(user),
		"O objetivo é ajudá-los a reconstruir o casamento em 2026.",
		"Mantenha as respostas concisas, mas profundas. Use formatação Markdown.",
	}
	for i, d := range directives {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	return b.String()
}

func roleDirective(user domain.UserProfile) string {
	if user == domain.ProfileFernanda {
		return "Como é a Fernanda falando, lembre-a de seu papel de auxiliadora, administradora e edificadora."
	}
	return "Como é o Marcelo falando, lembre-o de seu papel de sacerdote, provedor e de amar como Cristo."
}
