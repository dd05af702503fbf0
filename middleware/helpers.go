package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/athletics-meet/models"
)

func GetOperatorIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(operatorContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("operator claims not found in context")
	}

	idClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	var id int
	switch v := idClaim.(type) {
	case float64:
		// JSON числа приходят как float64
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimUserID, v)
		}
		id = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim: %q", jwtClaimUserID, v)
		}
		id = parsed
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: %T", jwtClaimUserID, idClaim)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid operator ID in '%s' claim: %d", jwtClaimUserID, id)
	}
	return id, nil
}

func GetOperatorRoleFromContext(ctx context.Context) (models.OperatorRole, error) {
	claims, ok := ctx.Value(operatorContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("operator claims not found in context")
	}

	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return "", fmt.Errorf("missing or invalid '%s' claim", jwtClaimRole)
	}

	role := models.OperatorRole(roleStr)
	switch role {
	case models.RoleAdmin, models.RoleOrganizer:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}
