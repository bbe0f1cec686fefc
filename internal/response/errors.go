package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrInvalidAPIKey      ErrCode = "INVALID_API_KEY"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrPermissionDenied   ErrCode = "PERMISSION_DENIED"
	ErrServiceRoleOnly    ErrCode = "SERVICE_ROLE_REQUIRED"
	ErrNotCourseOwner     ErrCode = "NOT_COURSE_OWNER"
	ErrStudentScopeDenied ErrCode = "STUDENT_SCOPE_DENIED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidQuery   ErrCode = "INVALID_QUERY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Domain-specific ───────────────────────────────────────────────
	ErrCourseFull      ErrCode = "COURSE_FULL"
	ErrCourseInactive  ErrCode = "COURSE_INACTIVE"
	ErrAlreadyEnrolled ErrCode = "ALREADY_ENROLLED"
	ErrLiveClassFull   ErrCode = "LIVE_CLASS_FULL"
	ErrLiveClassClosed ErrCode = "LIVE_CLASS_CLOSED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Correo o contraseña incorrectos."
	case ErrTokenRequired:
		return "Se requiere una sesión autenticada."
	case ErrTokenInvalid:
		return "La sesión no es válida o ha expirado."
	case ErrInvalidAPIKey:
		return "Clave de API inválida."

	case ErrForbidden:
		return "No tienes permiso para acceder a este recurso."
	case ErrPermissionDenied:
		return "Permiso denegado."
	case ErrServiceRoleOnly:
		return "Esta operación requiere credenciales de servicio."
	case ErrNotCourseOwner:
		return "No eres el docente de este curso."
	case ErrStudentScopeDenied:
		return "Los estudiantes solo pueden consultar sus propios datos."

	case ErrValidation:
		return "La validación falló. Revisa los campos enviados."
	case ErrInvalidID:
		return "Formato de ID inválido."
	case ErrInvalidPayload:
		return "El cuerpo de la petición no es válido."
	case ErrInvalidQuery:
		return "Parámetros de consulta inválidos."

	case ErrNotFound:
		return "Recurso no encontrado."
	case ErrConflict:
		return "El recurso ya existe."
	case ErrDependencyExists:
		return "No se puede eliminar porque otros registros dependen de él."

	case ErrCourseFull:
		return "El curso alcanzó su capacidad máxima."
	case ErrCourseInactive:
		return "El curso no está abierto a inscripciones."
	case ErrAlreadyEnrolled:
		return "El estudiante ya está inscrito en este curso."
	case ErrLiveClassFull:
		return "La clase en vivo alcanzó su límite de participantes."
	case ErrLiveClassClosed:
		return "La clase en vivo ya terminó o fue cancelada."

	case ErrRateLimitExceeded:
		return "Demasiadas peticiones. Intenta de nuevo más tarde."

	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
