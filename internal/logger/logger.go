package logger

import (
	"log"

	"github.com/fatih/color"
)

var Verbose bool = false

// Log registra uma mensagem informativa padrão
func Log(format string, a ...interface{}) {
	log.Printf(format, a...)
}

// Warn registra um aviso (problema em potencial, serviço continua)
func Warn(format string, a ...interface{}) {
	color.Set(color.FgYellow)
	log.Printf("[WARN]: "+format, a...)
	color.Unset()
}

// Err registra um problema real que não exige parar o serviço
func Err(format string, a ...interface{}) {
	color.Set(color.FgHiRed)
	log.Printf("[ERR]: "+format, a...)
	color.Unset()
}

// Fatal registra o erro e encerra o processo
func Fatal(format string, a ...interface{}) {
	color.Set(color.FgRed)
	log.Fatalf("[FATAL]: "+format, a...)
	color.Unset()
}

// LogV registra apenas quando o modo verboso está ativo
func LogV(format string, a ...interface{}) {
	if Verbose {
		Log(format, a...)
	}
}
