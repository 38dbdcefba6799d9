package domain

// RoleAdmin is the only role issued by admin sign-in.
const RoleAdmin = "admin"
