package greeting

import "strings"

type greetTpl func(salutation, name string) string

// first contact, any time of day
var firstContactReplies = []greetTpl{
	func(sd, nome string) string { return sd + nome + ". O que está mais vivo em você agora?" },
	func(sd, nome string) string { return sd + nome + ". Se desse nome ao que pulsa neste momento, qual seria?" },
	func(sd, nome string) string { return sd + nome + ". Para onde vai sua atenção quando você para por alguns segundos?" },
	func(sd, nome string) string { return sd + nome + ". O que te trouxe até aqui hoje: uma pergunta, uma inquietação ou só curiosidade?" },
	func(sd, nome string) string { return sd + nome + ". Se pudesse olhar para uma única coisa agora, qual seria?" },
	func(sd, nome string) string { return sd + nome + ". Estou aqui. Por onde você quer começar?" },
	func(sd, nome string) string { return sd + nome + ". O que faria diferença dizer em voz alta agora?" },
}

// first contact, tied to the band (never used at night)
var bandReplies = map[Band][]greetTpl{
	BandMorning: {
		func(sd, nome string) string { return sd + nome + ". O que você traz da noite para este dia que começa?" },
		func(sd, nome string) string { return sd + nome + ". Se este dia tivesse um fio condutor, qual seria?" },
		func(sd, nome string) string { return sd + nome + ". Como você quer habitar as próximas horas?" },
	},
	BandAfternoon: {
		func(sd, nome string) string { return sd + nome + ". Como você se percebe agora, no meio do caminho?" },
		func(sd, nome string) string { return sd + nome + ". O que mudou em você desde a manhã?" },
		func(sd, nome string) string { return sd + nome + ". Sua energia agora está presente, dispersa ou recolhida?" },
	},
	BandEvening: {
		func(sd, nome string) string { return sd + nome + ". O que você nota em si quando o ritmo do dia desacelera?" },
		func(sd, nome string) string { return sd + nome + ". O que deste dia você leva consigo?" },
		func(sd, nome string) string { return sd + nome + ". O que pede para ser olhado antes de virar a página?" },
	},
}

// returning user
var repeatReplies = []func(nome string) string{
	func(nome string) string { return "De volta" + nome + ". O que se moveu em você desde a última vez?" },
	func(nome string) string { return "Olá de novo" + nome + ". O que está diferente agora?" },
	func(nome string) string { return "Oi" + nome + ". O que está pedindo atenção hoje?" },
	func(nome string) string { return "Que bom te ver por aqui" + nome + ". Como você se encontra?" },
	func(nome string) string { return "Olá" + nome + ". Prefere começar pelo que pesa ou pelo que já está mais claro?" },
}

var farewellReplies = []func(salutation string) string{
	func(sd string) string { return "Até breve. " + sd + ", e que o que vem agora seja leve." },
	func(sd string) string { return "Quando quiser retomar, estarei aqui. " + sd + "." },
	func(sd string) string { return "Fica bem. O que conversamos aqui segue com você. " + sd + "." },
	func(sd string) string { return "Vá com leveza. " + sd + ", e quando precisar, seguimos daqui." },
}

// firstName renders ", Nome" from a full name, or "" when unknown.
func firstName(userName string) string {
	fields := strings.Fields(userName)
	if len(fields) == 0 {
		return ""
	}
	return ", " + fields[0]
}
