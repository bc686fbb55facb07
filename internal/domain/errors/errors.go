package errors

import (
	"errors"
	"fmt"
)

// ErrorType은 에러의 종류를 나타냅니다
type ErrorType string

const (
	// ErrorTypeValidation은 사용자 입력값(MTU, 프로파일 등)의 검증 실패를 나타냅니다
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeNotFound는 리소스를 찾을 수 없음을 나타냅니다
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeSystem은 시스템 레벨 에러를 나타냅니다
	ErrorTypeSystem ErrorType = "SYSTEM"

	// ErrorTypeTimeout은 타임아웃 에러를 나타냅니다
	ErrorTypeTimeout ErrorType = "TIMEOUT"

	// ErrorTypePrivilege는 root 권한 없이 변경 작업을 시도했음을 나타냅니다
	ErrorTypePrivilege ErrorType = "PRIVILEGE"

	// ErrorTypeDetection은 대상 인터페이스를 결정할 수 없음을 나타냅니다
	ErrorTypeDetection ErrorType = "DETECTION"

	// ErrorTypeUnsupported는 커널이 요청된 기능을 지원하지 않음을 나타냅니다
	ErrorTypeUnsupported ErrorType = "UNSUPPORTED_FEATURE"

	// ErrorTypeMutation은 개별 OS 설정 변경 실패를 나타냅니다
	ErrorTypeMutation ErrorType = "MUTATION"

	// ErrorTypePersistence는 백업/설정/유닛 파일 쓰기 실패를 나타냅니다
	ErrorTypePersistence ErrorType = "PERSISTENCE"
)

// DomainError는 도메인 레벨의 에러를 나타냅니다
type DomainError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error는 error 인터페이스를 구현합니다
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap은 내부 에러를 반환합니다
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is는 에러 비교를 위한 메서드입니다
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// 생성자 함수들

// NewValidationError는 유효성 검증 에러를 생성합니다
func NewValidationError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError는 리소스를 찾을 수 없는 에러를 생성합니다
func NewNotFoundError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewSystemError는 시스템 에러를 생성합니다
func NewSystemError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeSystem,
		Message: message,
		Cause:   cause,
	}
}

// NewTimeoutError는 타임아웃 에러를 생성합니다
func NewTimeoutError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeTimeout,
		Message: message,
	}
}

// NewPrivilegeError는 권한 부족 에러를 생성합니다
func NewPrivilegeError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypePrivilege,
		Message: message,
	}
}

// NewDetectionError는 인터페이스 감지 실패 에러를 생성합니다
func NewDetectionError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeDetection,
		Message: message,
		Cause:   cause,
	}
}

// NewUnsupportedFeatureError는 커널 기능 미지원 에러를 생성합니다
func NewUnsupportedFeatureError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeUnsupported,
		Message: message,
	}
}

// NewMutationError는 설정 변경 실패 에러를 생성합니다
func NewMutationError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeMutation,
		Message: message,
		Cause:   cause,
	}
}

// NewPersistenceError는 파일 영속화 실패 에러를 생성합니다
func NewPersistenceError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypePersistence,
		Message: message,
		Cause:   cause,
	}
}

// 에러 타입 확인 헬퍼 함수들

// TypeOf는 err 체인에서 가장 바깥쪽 DomainError의 타입을 반환합니다.
// DomainError가 없으면 빈 문자열을 반환합니다.
func TypeOf(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// IsValidationError는 유효성 검증 에러인지 확인합니다
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// IsNotFoundError는 리소스를 찾을 수 없는 에러인지 확인합니다
func IsNotFoundError(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsSystemError는 시스템 에러인지 확인합니다
func IsSystemError(err error) bool {
	return TypeOf(err) == ErrorTypeSystem
}

// IsTimeoutError는 타임아웃 에러인지 확인합니다
func IsTimeoutError(err error) bool {
	return TypeOf(err) == ErrorTypeTimeout
}

// IsPrivilegeError는 권한 에러인지 확인합니다
func IsPrivilegeError(err error) bool {
	return TypeOf(err) == ErrorTypePrivilege
}

// IsDetectionError는 인터페이스 감지 에러인지 확인합니다
func IsDetectionError(err error) bool {
	return TypeOf(err) == ErrorTypeDetection
}

// IsUnsupportedFeatureError는 기능 미지원 에러인지 확인합니다
func IsUnsupportedFeatureError(err error) bool {
	return TypeOf(err) == ErrorTypeUnsupported
}

// IsMutationError는 설정 변경 에러인지 확인합니다
func IsMutationError(err error) bool {
	return TypeOf(err) == ErrorTypeMutation
}

// IsPersistenceError는 영속화 에러인지 확인합니다
func IsPersistenceError(err error) bool {
	return TypeOf(err) == ErrorTypePersistence
}

// IsRecoverable은 실행을 계속할 수 있는 종류의 에러인지 확인합니다.
// 기능 미지원과 독립적인 설정 변경 실패만 경고로 처리됩니다.
func IsRecoverable(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeUnsupported, ErrorTypeMutation:
		return true
	default:
		return false
	}
}
