package model

// FixedTitles is the catalog seeded as fixed tasks on first start.
var FixedTitles = []string{
	"Curso Cisco",
	"Curso Senai",
	"Provas da faculdade",
	"Trabalhos da faculdade",
	"Documentos do projeto de extensão da faculdade",
	"Sistema do teatro",
	"Sistema de agendamento",
	"Manutenção dos sistemas no ar (ex: Contabilize)",
	"Moto (manutenção, check-ups, etc)",
	"Prestação de serviços de TI",
	"Abertura de CNPJ",
	"Registro de marca (monitorar andamento)",
	"Banda com José (treinos, aula de canto e música)",
	"200 horas de curso obrigatórias da faculdade",
	"Canal no YouTube (gravar, editar e enviar vídeos, incluindo para Xracing e Apaixonados por Motores)",
	"Saúde (médicos, dentista, exames etc.)",
	"Pagar servidor da Hostinger",
	"Parcelas do seguro da moto",
	"Boletos da cidadania da Giullia (ajuda financeira durante recuperação)",
}
