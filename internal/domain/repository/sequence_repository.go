package repository

// Nombres de secuencias consecutivas.
const (
	SeqReorder  = "reorder"
	SeqPurchase = "purchase"
	SeqSale     = "sale"
)

// SequenceRepository contador atómico de consecutivos (RO-, PC-, VT-).
// Reemplaza el patrón "leer última fila y sumar uno", que pierde números bajo
// concurrencia.
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor de la secuencia por empresa.
	Next(companyID, name string) (int64, error)
}
