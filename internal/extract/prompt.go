/*
 * This file is part of EduVox (https://github.com/eduvoxlabs/eduvox).
 * Copyright (C) 2025 EduVox Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package extract

import "fmt"

// BuildNotesPrompt creates the deterministic extraction instruction. It
// names the exact field set, demands a single JSON object as the entire
// response, shows one worked example of the shape, and embeds the
// (already truncated) transcript verbatim at the end.
func BuildNotesPrompt(transcript string) string {
	return fmt.Sprintf(`Você é um assistente educacional que ajuda alunos a anotar suas aulas.

Analise a transcrição abaixo de uma aula ou palestra e extraia os seguintes dados:
- "titulo": um título breve (até 7 palavras) que represente o tema da aula
- "professor": o nome do professor, ou string vazia se não for mencionado
- "topicos": os principais tópicos abordados
- "resumo": um resumo detalhado da aula, com frases completas e os conceitos explicados
- "notas": notas ou observações importantes
- "materiais": uma lista simples de strings, cada uma no formato [Título do Recurso](URL). Não use listas dentro da lista.

Responda somente com um único objeto JSON, sem nenhum texto adicional, exatamente neste formato:
{
  "titulo": "Aula de Inglês - Tempos Verbais",
  "professor": "Prof. Ana Souza",
  "topicos": "Presente simples; Passado simples; Futuro simples",
  "resumo": "Nesta aula foram abordados os tempos verbais do verbo 'to study', com exemplos de uso no cotidiano e as regras de conjugação explicadas pelo professor.",
  "notas": "Revisar os exercícios da página 42 antes da próxima aula.",
  "materiais": [
    "[Vídeo: Tenses Explained (YouTube)](https://youtube.com/exemplo1)",
    "[Artigo: Guia do Passado Simples](https://exemplo.com/past)"
  ]
}

TRANSCRIÇÃO:
%s`, transcript)
}

// BuildHighlightsPrompt creates the instruction for the final-summary
// step: given edited topics and summary, ask for a short plain-text
// recap of the most important points.
func BuildHighlightsPrompt(topics, summary string) string {
	return fmt.Sprintf(`Você é um assistente educacional. Com base nos tópicos e no resumo abaixo, forneça um resumo final destacando os pontos mais importantes da aula.

Tópicos: %s
Resumo: %s

Responda apenas com o resumo final, sem nenhum outro texto.`, topics, summary)
}
