// Command archivectl runs archive jobs from the command line and checks the
// files they produce.
//
// Usage:
//
//	archivectl month VOGA 2024 2 --type METAR
//	archivectl year VOGA 2024 --type TAF
//	archivectl extract response.txt --type METAR
//	archivectl verify data/METAR_VOGA_2024
//
// month and year read the same environment variables as the service.
package main

func main() {
	Execute()
}
